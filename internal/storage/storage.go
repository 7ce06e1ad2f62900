package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
)

var (
	// ErrMissingCredentials is returned when a client is requested from a
	// Config that does not name both a project and a credentials file.
	ErrMissingCredentials = errors.New("storage: missing credentials")

	// ErrBucketNotExist is returned by writes that target a bucket which does
	// not exist.
	ErrBucketNotExist = errors.New("storage: bucket does not exist")

	// ErrBucketAlreadyExists is returned by CreateBucket when the name is
	// already taken.
	ErrBucketAlreadyExists = errors.New("storage: bucket already exists")
)

// OpBucketExists names the existence check in a TransportError.
const OpBucketExists = "bucket exists"

// Client is the object storage capability the flow nodes depend on. A Client
// is constructed once and shared read-only between requests.
type Client interface {
	// BucketExists reports whether bucket exists. A missing bucket is not an
	// error.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates bucket. It does not check for an existing bucket
	// first.
	CreateBucket(ctx context.Context, bucket string, opts BucketOptions) error

	// UploadFile reads the whole of localPath and writes it to bucket in a
	// single request.
	UploadFile(ctx context.Context, bucket, localPath string, opts UploadOptions) error

	// NewWriter opens a sequential writer for an object. The object is only
	// committed when Close returns nil; cancelling ctx before Close aborts it.
	NewWriter(ctx context.Context, bucket, object string, opts WriterOptions) (io.WriteCloser, error)

	Close() error
}

// BucketOptions holds the optional attributes of a new bucket.
type BucketOptions struct {
	Location     string
	StorageClass string
}

type UploadOptions struct {
	// Destination is the object path within the bucket.
	Destination string

	// Gzip compresses the content and marks the object with a gzip
	// Content-Encoding.
	Gzip bool
}

type WriterOptions struct {
	Gzip bool

	// ChunkSize is the number of bytes buffered before each chunk is sent. A
	// writer blocks while a chunk is in flight. Zero uses the backend
	// default.
	ChunkSize int

	// ContentType overrides the type detected from the object name.
	ContentType string
}

// TransportError reports that a storage call could not complete, as opposed
// to completing with a negative answer.
type TransportError struct {
	Op     string
	Bucket string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Bucket, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Open returns the Client described by cfg. A LocalRoot selects the
// filesystem emulation; otherwise a GCS client is built, which requires a
// complete Config.
func Open(ctx context.Context, cfg Config) (Client, error) {
	if cfg.LocalRoot != "" {
		c, err := NewDiskClient(cfg.LocalRoot)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := NewGCSClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// detectContentType returns a MIME type based on file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}

	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return "application/octet-stream"
	}

	return ct
}
