package meta

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestService_LoadUpload(t *testing.T) {
	ctx := context.Background()
	baseURL := t.TempDir()
	srv := New(afs.New(), baseURL)
	t.Setenv("OSSIM_LEVEL", "DEBUG")

	data, ok, err := srv.Load(ctx, "missing.yaml")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)

	require.NoError(t, srv.Upload(ctx, "config.yaml", []byte("log:\n  level: ${env.OSSIM_LEVEL}\n")))
	data, ok, err = srv.Load(ctx, "config.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "log:\n  level: DEBUG\n", string(data))

	absolute := filepath.Join(baseURL, "config.yaml")
	assert.Equal(t, absolute, srv.URL(absolute))
	raw, err := srv.Download(ctx, absolute)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "${env.OSSIM_LEVEL}")
}
