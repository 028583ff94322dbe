package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("ossim", "0.0.1", fname))

	ctx, span := StartSpan(context.Background(), "kernel.dispatch")
	span.WithAttributes(map[string]string{"algorithm": "SJF"}).SetInt("task.id", 3)
	_, child := StartSpan(ctx, "kernel.terminate")
	child.AddEvent("terminated", map[string]string{"task.id": Itoa(3)})
	EndSpan(child, errors.New("boom"))
	EndSpan(span, nil)
	require.NoError(t, Shutdown(context.Background()))

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kernel.dispatch")
	assert.Contains(t, string(data), "kernel.terminate")
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"a": "b"}))
	assert.Nil(t, span.SetInt("a", 1))
	span.SetStatus(nil)
	span.AddEvent("x", nil)
	EndSpan(span, nil)
}
