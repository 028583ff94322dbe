package shell

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes start at 1 to stay clear of parsly.EOF
const (
	whitespaceCode = iota + 1
	commentCode
	integerCode
	wordCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	commentToken    = parsly.NewToken(commentCode, "Comment", &commentMatcher{})
	integerToken    = parsly.NewToken(integerCode, "Integer", &integerMatcher{})
	wordToken       = parsly.NewToken(wordCode, "Word", &wordMatcher{})
)

// commentMatcher matches '#' up to the end of input
type commentMatcher struct{}

func (m *commentMatcher) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize || cursor.Input[cursor.Pos] != '#' {
		return 0
	}
	return cursor.InputSize - cursor.Pos
}

// integerMatcher matches an optionally signed decimal number terminated by
// whitespace or end of input
type integerMatcher struct{}

func (m *integerMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	i := pos
	if input[i] == '-' || input[i] == '+' {
		i++
	}
	digits := 0
	for ; i < size && isDigit(input[i]); i++ {
		digits++
	}
	if digits == 0 {
		return 0
	}
	if i < size && !isSpace(input[i]) {
		return 0
	}
	return i - pos
}

// wordMatcher matches a run of non whitespace bytes
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if isSpace(cursor.Input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
