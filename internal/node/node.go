// Package node implements the flow nodes that act on cloud storage: an upload
// node that guards every write with a bucket existence check, and a
// create-bucket node.
//
// Nodes never return errors to the flow. Every failure is logged where it
// happens and, when the node reaches a result, a boolean Output is emitted.
package node

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/storage"
	"github.com/tomasbasham/gcsflow/internal/transfer"
)

const missingCredentials = "Missing GCS credentials: a project ID and a credentials file are required"

// Node handles inbound flow messages.
type Node interface {
	Handle(ctx context.Context, msg flow.Message, out flow.Emitter)
}

// Unconfigured stands in for a node whose storage client could not be built.
// It has no side effects and emits nothing.
type Unconfigured struct {
	log logrus.FieldLogger
}

func NewUnconfigured(log logrus.FieldLogger) *Unconfigured {
	u := &Unconfigured{log: log}
	u.log.Warn(missingCredentials)
	return u
}

func (u *Unconfigured) Handle(context.Context, flow.Message, flow.Emitter) {
	u.log.Warn(missingCredentials)
}

// NewUpload returns an upload node using the streamed strategy when streamed
// is set and the buffered one otherwise. A nil client yields an Unconfigured
// node.
func NewUpload(log logrus.FieldLogger, client storage.Client, cfg Config, streamed bool, tcfg transfer.Config) (Node, error) {
	log = log.WithField("node", uploadNodeName(streamed))
	if client == nil {
		return NewUnconfigured(log), nil
	}

	var strategy transfer.Strategy = transfer.NewBuffered(client)
	if streamed {
		s, err := transfer.NewStreamed(log, client, tcfg)
		if err != nil {
			return nil, err
		}
		strategy = s
	}
	return NewUploader(log, client, cfg, strategy), nil
}

// NewCreateBucket returns a create-bucket node. A nil client yields an
// Unconfigured node.
func NewCreateBucket(log logrus.FieldLogger, client storage.Client, cfg Config) Node {
	log = log.WithField("node", "create-bucket")
	if client == nil {
		return NewUnconfigured(log)
	}
	return NewProvisioner(log, client, cfg)
}

func uploadNodeName(streamed bool) string {
	if streamed {
		return "upload-stream"
	}
	return "upload"
}
