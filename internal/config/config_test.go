package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Transfer.StreamTimeout)
	assert.Equal(t, "16MiB", cfg.Transfer.ChunkSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(8), cfg.Server.MaxConcurrent)
	assert.Equal(t, 120, cfg.Server.RequestsPerMinute)
	assert.False(t, cfg.Node.Compress)
	assert.Empty(t, cfg.Node.BucketName)
	assert.False(t, cfg.Storage.Complete())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GCSFLOW_STORAGE_PROJECT_ID", "proj")
	t.Setenv("GCSFLOW_STORAGE_CREDENTIALS_PATH", "/etc/creds.json")
	t.Setenv("GCSFLOW_NODE_BUCKET", "b")
	t.Setenv("GCSFLOW_NODE_COMPRESS", "true")
	t.Setenv("GCSFLOW_TRANSFER_STREAM_TIMEOUT", "90s")

	cfg, err := Load("", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "proj", cfg.Storage.ProjectID)
	assert.Equal(t, "/etc/creds.json", cfg.Storage.CredentialsPath)
	assert.True(t, cfg.Storage.Complete())
	assert.Equal(t, "b", cfg.Node.BucketName)
	assert.True(t, cfg.Node.Compress)
	assert.Equal(t, 90*time.Second, cfg.Transfer.StreamTimeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcsflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node:
  bucket: from-file
  local_path: /data/report.csv
transfer:
  chunk_size: 8MiB
server:
  port: 9090
`), 0o644))

	cfg, err := Load(path, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Node.BucketName)
	assert.Equal(t, "/data/report.csv", cfg.Node.LocalPath)
	assert.Equal(t, "8MiB", cfg.Transfer.ChunkSize)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, nil)
	assert.Error(t, err)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("GCSFLOW_NODE_BUCKET", "from-env")
	t.Setenv("GCSFLOW_NODE_DESTINATION_PATH", "env/dest.txt")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("bucket", "", "")
	flags.String("destination", "", "")
	require.NoError(t, flags.Parse([]string{"--bucket", "from-flag"}))

	cfg, err := Load("", flags, map[string]string{
		"node.bucket":           "bucket",
		"node.destination_path": "destination",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Node.BucketName)
	// Unset flags leave lower layers in place.
	assert.Equal(t, "env/dest.txt", cfg.Node.DestinationPath)
}

func TestLoad_UnknownFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	_, err := Load("", flags, map[string]string{"node.bucket": "bucket"})
	assert.Error(t, err)
}
