package node

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/storage"
)

// Provisioner creates the configured bucket. Unlike uploads it does not check
// for the bucket first; creating an existing bucket fails in the storage
// backend.
type Provisioner struct {
	log    logrus.FieldLogger
	client storage.Client
	cfg    Config
}

// Ensure interface compliance.
var _ Node = (*Provisioner)(nil)

func NewProvisioner(log logrus.FieldLogger, client storage.Client, cfg Config) *Provisioner {
	return &Provisioner{log: log, client: client, cfg: cfg}
}

// CreateBucket creates the bucket named in the node configuration.
func (p *Provisioner) CreateBucket(ctx context.Context) error {
	if p.cfg.BucketName == "" {
		return ErrNoBucket
	}
	return p.client.CreateBucket(ctx, p.cfg.BucketName, storage.BucketOptions{
		Location:     p.cfg.Location,
		StorageClass: p.cfg.StorageClass,
	})
}

// Handle creates the bucket. The message carries nothing the provisioner
// uses: the bucket name only ever comes from configuration.
func (p *Provisioner) Handle(ctx context.Context, _ flow.Message, out flow.Emitter) {
	if err := p.CreateBucket(ctx); err != nil {
		p.log.WithError(err).WithField("bucket", p.cfg.BucketName).Warn("Failed to create bucket")
		out.Send(flow.Output{Payload: false})
		return
	}

	p.log.Infof("%s was successfully created.", p.cfg.BucketName)
	out.Send(flow.Output{Payload: true})
}
