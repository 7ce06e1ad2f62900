package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGCSClient_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty", cfg: Config{}},
		{name: "no credentials path", cfg: Config{ProjectID: "proj"}},
		{name: "no project", cfg: Config{CredentialsPath: "/etc/key.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewGCSClient(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, ErrMissingCredentials)
			assert.Nil(t, c)
		})
	}
}

func TestNewGCSClient_UnreadableCredentials(t *testing.T) {
	cfg := Config{
		ProjectID:       "proj",
		CredentialsPath: filepath.Join(t.TempDir(), "missing.json"),
	}

	_, err := NewGCSClient(context.Background(), cfg)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingCredentials)
}

func TestOpen(t *testing.T) {
	t.Run("LocalRoot", func(t *testing.T) {
		c, err := Open(context.Background(), Config{LocalRoot: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &DiskClient{}, c)
	})

	t.Run("IncompleteConfigYieldsNoClient", func(t *testing.T) {
		c, err := Open(context.Background(), Config{ProjectID: "proj"})
		assert.ErrorIs(t, err, ErrMissingCredentials)
		assert.Nil(t, c)
	})
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantPrefix string
	}{
		{name: "json file", path: "exports/data.json", wantPrefix: "application/json"},
		{name: "no extension", path: "exports/Makefile", wantPrefix: "application/octet-stream"},
		{name: "txt file", path: "a.txt", wantPrefix: "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, detectContentType(tt.path), tt.wantPrefix)
		})
	}
}
