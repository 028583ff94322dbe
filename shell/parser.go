package shell

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

// Arg is a single command argument
type Arg struct {
	Text  string
	Value int
	IsInt bool
}

// Command is one parsed script line
type Command struct {
	Line int
	Name string
	Args []Arg
}

// Int returns argument i as an integer
func (c *Command) Int(i int) (int, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("line %d: %v: missing argument %d", c.Line, c.Name, i+1)
	}
	if !c.Args[i].IsInt {
		return 0, fmt.Errorf("line %d: %v: argument %d %q is not an integer", c.Line, c.Name, i+1, c.Args[i].Text)
	}
	return c.Args[i].Value, nil
}

// IntOr returns argument i as an integer or fallback when absent
func (c *Command) IntOr(i, fallback int) (int, error) {
	if i >= len(c.Args) {
		return fallback, nil
	}
	return c.Int(i)
}

// StringOr returns argument i as text or fallback when absent
func (c *Command) StringOr(i int, fallback string) string {
	if i >= len(c.Args) {
		return fallback
	}
	return c.Args[i].Text
}

// Parse parses a script; blank and comment lines produce no command
func Parse(script []byte) ([]*Command, error) {
	var ret []*Command
	for i, line := range bytes.Split(script, []byte("\n")) {
		command, err := ParseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if command != nil {
			ret = append(ret, command)
		}
	}
	return ret, nil
}

// ParseLine parses a single line: a command name followed by integer or word
// arguments, optionally ending with a '#' comment.
func ParseLine(line []byte, lineNo int) (*Command, error) {
	cursor := parsly.NewCursor("", bytes.TrimRight(line, "\r"), 0)
	matched := cursor.MatchAfterOptional(whitespaceToken, commentToken, wordToken)
	switch matched.Code {
	case parsly.EOF, commentCode:
		return nil, nil
	case wordCode:
	default:
		return nil, fmt.Errorf("line %d: %w", lineNo, cursor.NewError(wordToken))
	}
	command := &Command{Line: lineNo, Name: strings.ToLower(matched.Text(cursor))}
	for {
		matched = cursor.MatchAfterOptional(whitespaceToken, commentToken, integerToken, wordToken)
		switch matched.Code {
		case parsly.EOF, commentCode:
			return command, nil
		case integerCode:
			text := matched.Text(cursor)
			value, err := strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			command.Args = append(command.Args, Arg{Text: text, Value: value, IsInt: true})
		case wordCode:
			command.Args = append(command.Args, Arg{Text: matched.Text(cursor)})
		default:
			if !cursor.HasMore() {
				return command, nil
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, cursor.NewError(integerToken, wordToken))
		}
	}
}
