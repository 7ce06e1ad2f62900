package transfer

import (
	"context"
	"fmt"

	"github.com/tomasbasham/gcsflow/internal/storage"
)

// Buffered delegates the whole read and write to the storage client. There is
// no partial progress: the object is written entirely or not at all.
type Buffered struct {
	client storage.Client
}

// Ensure interface compliance.
var _ Strategy = (*Buffered)(nil)

func NewBuffered(client storage.Client) *Buffered {
	return &Buffered{client: client}
}

func (b *Buffered) Name() string { return StrategyBuffered }

func (b *Buffered) Transfer(ctx context.Context, job Job) error {
	opts := storage.UploadOptions{
		Destination: job.Destination,
		Gzip:        job.Gzip,
	}
	if err := b.client.UploadFile(ctx, job.Bucket, job.LocalPath, opts); err != nil {
		return fmt.Errorf("transfer: upload of %q to //%s/%s failed: %w", job.LocalPath, job.Bucket, job.Destination, err)
	}
	return nil
}
