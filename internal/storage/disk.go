package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskClient emulates buckets as directories under a base directory. Objects
// are written to a temporary file and renamed into place on Close, so a
// failed or aborted write never leaves a partial object behind.
type DiskClient struct {
	baseDir string
}

// Ensure interface compliance.
var _ Client = (*DiskClient)(nil)

// NewDiskClient creates a DiskClient rooted at baseDir. The directory is
// created if it does not already exist.
func NewDiskClient(baseDir string) (*DiskClient, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local base directory %q: %w", baseDir, err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve absolute path for %q: %w", baseDir, err)
	}
	return &DiskClient{baseDir: abs}, nil
}

func (c *DiskClient) BucketExists(_ context.Context, bucket string) (bool, error) {
	dir, err := c.bucketDir(bucket)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: failed to stat bucket %q: %w", bucket, err)
	}
	return info.IsDir(), nil
}

// CreateBucket creates the bucket directory. Location and storage class have
// no meaning on disk and are ignored.
func (c *DiskClient) CreateBucket(_ context.Context, bucket string, _ BucketOptions) error {
	dir, err := c.bucketDir(bucket)
	if err != nil {
		return err
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %q", ErrBucketAlreadyExists, bucket)
		}
		return fmt.Errorf("storage: create bucket %q failed: %w", bucket, err)
	}
	return nil
}

func (c *DiskClient) UploadFile(ctx context.Context, bucket, localPath string, opts UploadOptions) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("storage: failed to read %q: %w", localPath, err)
	}
	if opts.Gzip {
		if data, err = gzipBytes(data); err != nil {
			return fmt.Errorf("storage: failed to compress %q: %w", localPath, err)
		}
	}

	w, err := c.openObject(ctx, bucket, opts.Destination)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.abort()
		return fmt.Errorf("storage: upload write failed for %q: %w", opts.Destination, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: upload close failed for %q: %w", opts.Destination, err)
	}
	return nil
}

func (c *DiskClient) NewWriter(ctx context.Context, bucket, object string, opts WriterOptions) (io.WriteCloser, error) {
	w, err := c.openObject(ctx, bucket, object)
	if err != nil {
		return nil, err
	}
	if opts.Gzip {
		return newGzipWriter(w), nil
	}
	return w, nil
}

func (c *DiskClient) Close() error {
	return nil
}

func (c *DiskClient) bucketDir(bucket string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("storage: invalid bucket name %q", bucket)
	}
	return filepath.Join(c.baseDir, bucket), nil
}

func (c *DiskClient) openObject(ctx context.Context, bucket, object string) (*diskWriter, error) {
	dir, err := c.bucketDir(bucket)
	if err != nil {
		return nil, err
	}
	if ok, err := c.BucketExists(ctx, bucket); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBucketNotExist, bucket)
	}

	rel := filepath.FromSlash(object)
	if object == "" || !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("storage: invalid object name %q", object)
	}
	dest := filepath.Join(dir, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create directory for %q: %w", object, err)
	}
	f, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create file for %q: %w", object, err)
	}
	return &diskWriter{ctx: ctx, f: f, dest: dest}, nil
}

// diskWriter mirrors the GCS writer contract: writes fail once ctx is done
// and Close commits the object only if ctx is still live.
type diskWriter struct {
	ctx  context.Context
	f    *os.File
	dest string
}

func (w *diskWriter) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	return w.f.Write(p)
}

func (w *diskWriter) Close() error {
	if err := w.ctx.Err(); err != nil {
		_ = w.abort()
		return err
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.f.Name())
		return err
	}
	return os.Rename(w.f.Name(), w.dest)
}

func (w *diskWriter) abort() error {
	_ = w.f.Close()
	return os.Remove(w.f.Name())
}
