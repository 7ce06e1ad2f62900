package operation

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/node"
)

// WorkerOptions configures a single node run.
type WorkerOptions struct {
	OperationID string
	Store       Store
	Node        node.Node
	Message     flow.Message
	Log         logrus.FieldLogger
}

// Run hands the message to the node and records what it emitted, moving the
// operation through running → complete.
//
// Run is intended to be called in a separate goroutine; it owns the full
// lifecycle of the operation from the moment it is called.
func Run(ctx context.Context, opts WorkerOptions) {
	log := opts.Log.WithField("operation_id", opts.OperationID)

	if err := opts.Store.MarkRunning(opts.OperationID); err != nil {
		log.WithError(err).Error("Failed to mark operation running")
		return
	}

	rec := &flow.Recorder{}
	opts.Node.Handle(ctx, opts.Message, rec)

	var payload *bool
	if out, ok := rec.Last(); ok {
		payload = &out.Payload
	}

	if err := opts.Store.MarkComplete(opts.OperationID, payload); err != nil {
		log.WithError(err).Error("Failed to mark operation complete")
	}
}
