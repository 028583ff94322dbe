package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
		hasError bool
	}{
		{input: "DEBUG", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "ERROR", expected: slog.LevelError},
		{input: "TRACE", expected: slog.LevelInfo, hasError: true},
	}
	for _, testCase := range testCases {
		actual, err := ParseLevel(testCase.input)
		assert.Equal(t, testCase.expected, actual, testCase.input)
		assert.Equal(t, testCase.hasError, err != nil, testCase.input)
	}
}

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "bogus")
	assert.Contains(t, buf.String(), "unknown log level")
	buf.Reset()
	logger.Debug("hidden")
	logger.Info("shown", "task", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "task=1")
}
