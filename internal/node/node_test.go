package node

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/storage"
	"github.com/tomasbasham/gcsflow/internal/transfer"
)

func TestMissingCredentials(t *testing.T) {
	client, err := storage.Open(context.Background(), storage.Config{ProjectID: "proj"})
	require.ErrorIs(t, err, storage.ErrMissingCredentials)

	log, hook := test.NewNullLogger()
	upload, err := NewUpload(log, client, Config{BucketName: "b1"}, false, transfer.Config{})
	require.NoError(t, err)
	stream, err := NewUpload(log, client, Config{BucketName: "b1"}, true, transfer.Config{})
	require.NoError(t, err)
	create := NewCreateBucket(log, client, Config{BucketName: "b1"})

	for _, n := range []Node{upload, stream, create} {
		assert.IsType(t, &Unconfigured{}, n)

		hook.Reset()
		rec := &flow.Recorder{}
		assert.NotPanics(t, func() {
			n.Handle(context.Background(), flow.Message{LocalFilename: "/tmp/a.txt"}, rec)
		})

		assert.Empty(t, rec.Outputs())
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, missingCredentials, entry.Message)
	}
}

func TestNewUpload_InvalidChunkSize(t *testing.T) {
	client, err := storage.NewDiskClient(t.TempDir())
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	_, err = NewUpload(log, client, Config{}, true, transfer.Config{ChunkSize: "huge"})
	assert.Error(t, err)
}
