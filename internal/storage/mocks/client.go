package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/tomasbasham/gcsflow/internal/storage"
)

// Client is a mock implementation of storage.Client
type Client struct {
	mock.Mock
}

func (m *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *Client) CreateBucket(ctx context.Context, bucket string, opts storage.BucketOptions) error {
	args := m.Called(ctx, bucket, opts)
	return args.Error(0)
}

func (m *Client) UploadFile(ctx context.Context, bucket, localPath string, opts storage.UploadOptions) error {
	args := m.Called(ctx, bucket, localPath, opts)
	return args.Error(0)
}

func (m *Client) NewWriter(ctx context.Context, bucket, object string, opts storage.WriterOptions) (io.WriteCloser, error) {
	args := m.Called(ctx, bucket, object, opts)
	if w, ok := args.Get(0).(io.WriteCloser); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Close() error {
	args := m.Called()
	return args.Error(0)
}
