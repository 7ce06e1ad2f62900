// Package storage provides the object storage capability used by the flow
// nodes: bucket existence, bucket creation and object writes. The GCS
// implementation is the production backend; DiskClient emulates buckets on the
// local filesystem.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSClient talks to Google Cloud Storage on behalf of a single project.
type GCSClient struct {
	client    *storage.Client
	projectID string
}

// Ensure interface compliance.
var _ Client = (*GCSClient)(nil)

// NewGCSClient creates a GCSClient from cfg. It returns ErrMissingCredentials
// without touching the network when cfg is incomplete. opts are passed
// through to the underlying GCS client after the configured credentials.
func NewGCSClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*GCSClient, error) {
	if !cfg.Complete() {
		return nil, ErrMissingCredentials
	}

	data, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read credentials %q: %w", cfg.CredentialsPath, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, storage.ScopeFullControl)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to parse credentials %q: %w", cfg.CredentialsPath, err)
	}

	clientOpts := []option.ClientOption{option.WithCredentials(creds)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create GCS client: %w", err)
	}
	return &GCSClient{client: client, projectID: cfg.ProjectID}, nil
}

// BucketExists fetches the bucket's metadata; a not-found answer is reported
// as false rather than an error.
func (c *GCSClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.client.Bucket(bucket).Attrs(ctx)
	if errors.Is(err, storage.ErrBucketNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateBucket creates bucket in the configured project.
func (c *GCSClient) CreateBucket(ctx context.Context, bucket string, opts BucketOptions) error {
	attrs := &storage.BucketAttrs{
		Location:     opts.Location,
		StorageClass: opts.StorageClass,
	}

	err := c.client.Bucket(bucket).Create(ctx, c.projectID, attrs)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
			return fmt.Errorf("%w: %q", ErrBucketAlreadyExists, bucket)
		}
		return fmt.Errorf("storage: create bucket %q failed: %w", bucket, err)
	}
	return nil
}

// UploadFile reads localPath into memory and sends it as one non-resumable
// request, so the object is either written whole or not at all.
func (c *GCSClient) UploadFile(ctx context.Context, bucket, localPath string, opts UploadOptions) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("storage: failed to read %q: %w", localPath, err)
	}

	obj := c.client.Bucket(bucket).Object(opts.Destination)
	w := obj.NewWriter(ctx)
	w.ChunkSize = 0
	w.ContentType = detectContentType(opts.Destination)

	if opts.Gzip {
		w.ContentEncoding = "gzip"
		if data, err = gzipBytes(data); err != nil {
			_ = w.Close()
			return fmt.Errorf("storage: failed to compress %q: %w", localPath, err)
		}
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: upload write failed for %q: %w", opts.Destination, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: upload close failed for %q: %w", opts.Destination, err)
	}
	return nil
}

// NewWriter returns a resumable object writer. Writes block while a chunk is
// being sent.
func (c *GCSClient) NewWriter(ctx context.Context, bucket, object string, opts WriterOptions) (io.WriteCloser, error) {
	if object == "" {
		return nil, fmt.Errorf("storage: object name is empty")
	}

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if opts.ChunkSize > 0 {
		w.ChunkSize = opts.ChunkSize
	}
	w.ContentType = opts.ContentType
	if w.ContentType == "" {
		w.ContentType = detectContentType(object)
	}

	if opts.Gzip {
		w.ContentEncoding = "gzip"
		return newGzipWriter(w), nil
	}
	return w, nil
}

func (c *GCSClient) Close() error {
	return c.client.Close()
}
