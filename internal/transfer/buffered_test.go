package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tomasbasham/gcsflow/internal/storage"
	"github.com/tomasbasham/gcsflow/internal/storage/mocks"
)

func TestBuffered_Transfer(t *testing.T) {
	job := Job{Bucket: "b1", LocalPath: "/tmp/a.txt", Destination: "a.txt", Gzip: true}
	want := storage.UploadOptions{Destination: "a.txt", Gzip: true}

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("UploadFile", mock.Anything, "b1", "/tmp/a.txt", want).Return(nil)

		err := NewBuffered(client).Transfer(context.Background(), job)
		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		cause := errors.New("connection reset")
		client := new(mocks.Client)
		client.On("UploadFile", mock.Anything, "b1", "/tmp/a.txt", want).Return(cause)

		err := NewBuffered(client).Transfer(context.Background(), job)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "//b1/a.txt")
	})
}
