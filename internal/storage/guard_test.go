package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/gcsflow/internal/storage"
	"github.com/tomasbasham/gcsflow/internal/storage/mocks"
)

func TestGuard_Confirm(t *testing.T) {
	t.Run("BucketPresent", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "b1").Return(true, nil)

		ok, err := storage.NewGuard(client).Confirm(context.Background(), "b1")
		require.NoError(t, err)
		assert.True(t, ok)
		client.AssertExpectations(t)
	})

	t.Run("BucketAbsentIsNotAnError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "b2").Return(false, nil)

		ok, err := storage.NewGuard(client).Confirm(context.Background(), "b2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("CheckFailure", func(t *testing.T) {
		cause := errors.New("401 unauthorized")
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "b3").Return(false, cause)

		ok, err := storage.NewGuard(client).Confirm(context.Background(), "b3")
		assert.False(t, ok)

		var te *storage.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, storage.OpBucketExists, te.Op)
		assert.Equal(t, "b3", te.Bucket)
		assert.ErrorIs(t, err, cause)
	})
}
