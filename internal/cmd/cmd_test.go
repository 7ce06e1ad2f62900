package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/cli-runtime/iooption"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommandWithArgs(NewGCSFlowOptions(iooption.IOStreams{
		In:     &bytes.Buffer{},
		Out:    &out,
		ErrOut: &errOut,
	}))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCreateBucketThenUpload(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644))

	stdout, _, err := execute(t, "--local-root", root, "create-bucket", "--bucket", "reports")
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":true}`, stdout)

	stdout, _, err = execute(t, "--local-root", root, "upload", "--bucket", "reports", src, "2024/report.csv")
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":true}`, stdout)

	got, err := os.ReadFile(filepath.Join(root, "reports", "2024", "report.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))
}

func TestUpload_Streamed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "reports"), 0o755))
	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, bytes.Repeat([]byte("x"), 4096), 0o644))

	stdout, _, err := execute(t, "--local-root", root, "upload", "--bucket", "reports", "--stream", "--chunk-size", "1KiB", src)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":true}`, stdout)

	// Without a destination the object takes the file's base name.
	info, err := os.Stat(filepath.Join(root, "reports", "report.csv"))
	require.NoError(t, err)
	assert.EqualValues(t, 4096, info.Size())
}

func TestUpload_MissingBucket(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	stdout, stderr, err := execute(t, "--local-root", root, "upload", "--bucket", "absent", src)
	assert.ErrorIs(t, err, errNoResult)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "create-bucket")
}

func TestCreateBucket_AlreadyExists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "reports"), 0o755))

	stdout, _, err := execute(t, "--local-root", root, "create-bucket", "--bucket", "reports")
	assert.ErrorIs(t, err, errNoResult)
	assert.JSONEq(t, `{"payload":false}`, stdout)
}

func TestUpload_MissingCredentials(t *testing.T) {
	stdout, stderr, err := execute(t, "upload", "--bucket", "reports", "/tmp/report.csv")
	assert.ErrorIs(t, err, errNoResult)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Missing GCS credentials")
}

func TestUpload_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "--log-level", "loud", "--local-root", t.TempDir(), "upload")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errNoResult)
}

func TestUpload_TooManyArgs(t *testing.T) {
	_, _, err := execute(t, "upload", "a", "b", "c")
	assert.Error(t, err)
}
