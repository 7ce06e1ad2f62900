package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/storage"
	"github.com/tomasbasham/gcsflow/internal/transfer"
)

var (
	// ErrBucketNotFound is returned by Upload when the existence check
	// answered that the bucket is absent. Nothing was written.
	ErrBucketNotFound = errors.New("bucket does not exist")

	ErrNoBucket    = errors.New("no bucket configured")
	ErrNoLocalFile = errors.New("no local file specified")
)

// Uploader sends local files to a bucket that must already exist.
type Uploader struct {
	log      logrus.FieldLogger
	guard    *storage.Guard
	strategy transfer.Strategy
	cfg      Config
}

// Ensure interface compliance.
var _ Node = (*Uploader)(nil)

func NewUploader(log logrus.FieldLogger, client storage.Client, cfg Config, strategy transfer.Strategy) *Uploader {
	return &Uploader{
		log:      log,
		guard:    storage.NewGuard(client),
		strategy: strategy,
		cfg:      cfg,
	}
}

// Handle resolves msg against the node configuration and uploads the file.
// It emits true on success and false when the transfer fails. A missing
// bucket or a failed existence check emits nothing.
func (u *Uploader) Handle(ctx context.Context, msg flow.Message, out flow.Emitter) {
	req := u.cfg.Resolve(msg)
	err := u.Upload(ctx, req)

	var te *storage.TransportError
	switch {
	case err == nil:
		u.log.WithField("strategy", u.strategy.Name()).Info("Upload complete")
		out.Send(flow.Output{Payload: true})
	case errors.As(err, &te) && te.Op == storage.OpBucketExists:
		u.log.WithError(err).Error("Failed to check bucket")
	case errors.Is(err, ErrBucketNotFound):
		u.log.Warnf("Warning: Bucket %q does not exist. Use the \"create-bucket\" command to create the bucket first.", req.BucketName)
	default:
		u.log.WithError(err).Warn("Upload failed")
		out.Send(flow.Output{Payload: false})
	}
}

// Upload transfers one request. The bucket is always confirmed to exist
// before the transfer starts.
func (u *Uploader) Upload(ctx context.Context, req Request) error {
	if req.BucketName == "" {
		return ErrNoBucket
	}
	if req.LocalPath == "" {
		return ErrNoLocalFile
	}

	exists, err := u.guard.Confirm(ctx, req.BucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrBucketNotFound, req.BucketName)
	}

	u.log.WithField("strategy", u.strategy.Name()).
		Infof("Uploading contents from %q to \"//%s/%s\"", req.LocalPath, req.BucketName, req.DestinationPath)

	return u.strategy.Transfer(ctx, transfer.Job{
		Bucket:      req.BucketName,
		LocalPath:   req.LocalPath,
		Destination: req.DestinationPath,
		Gzip:        req.Compress,
	})
}
