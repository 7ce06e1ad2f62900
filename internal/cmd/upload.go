package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/node"
)

// errNoResult is returned when a node emitted no true payload. The node has
// already logged the reason.
var errNoResult = errors.New("operation did not succeed")

type UploadOptions struct {
	root    *GCSFlowOptions
	message flow.Message

	Bucket        string
	Local         string
	Destination   string
	Gzip          bool
	Stream        bool
	StreamTimeout time.Duration
	ChunkSize     string
}

var (
	uploadLong = templates.LongDesc(`
		Upload a local file to an existing bucket.

		The bucket is checked before anything is written; a missing bucket
		is reported and nothing is uploaded. The --local and --destination
		flags take precedence over the positional arguments. Without a
		destination the object is named after the local file.

		The emitted payload is printed as JSON. The command exits non-zero
		unless the upload succeeded.`)

	uploadExample = templates.Examples(`
		# Upload a file to the root of a bucket
		gcsflow upload --bucket my-bucket ./report.csv

		# Stream a large file with gzip compression
		gcsflow upload --bucket my-bucket --stream --gzip ./dump.sql backups/dump.sql.gz`)
)

func NewUploadOptions(root *GCSFlowOptions) *UploadOptions {
	return &UploadOptions{
		root: root,
	}
}

func NewUploadCommand(o *UploadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "upload [LOCAL] [DESTINATION]",
		DisableFlagsInUseLine: true,
		Short:                 "Upload a file to a bucket",
		Long:                  uploadLong,
		Example:               uploadExample,
		Args:                  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(cmd); err != nil {
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.Bucket, "bucket", "b", "", "Bucket to upload to")
	flags.StringVarP(&o.Local, "local", "l", "", "Local file to upload")
	flags.StringVarP(&o.Destination, "destination", "d", "", "Object path within the bucket")
	flags.BoolVar(&o.Gzip, "gzip", false, "Compress the object with gzip")
	flags.BoolVar(&o.Stream, "stream", false, "Stream the file in chunks instead of a single request")
	flags.DurationVar(&o.StreamTimeout, "stream-timeout", 30*time.Minute, "Upper bound on a streamed upload")
	flags.StringVar(&o.ChunkSize, "chunk-size", "16MiB", "Chunk size of a streamed upload")

	return cmd
}

func (o *UploadOptions) Complete(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		o.message.LocalFilename = args[0]
	}
	if len(args) > 1 {
		o.message.DestinationFilename = args[1]
	}
	return nil
}

func (o *UploadOptions) Validate() error {
	if o.StreamTimeout < 0 {
		return fmt.Errorf("--stream-timeout must not be negative")
	}
	return nil
}

func (o *UploadOptions) Run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := o.root.loadConfig(cmd, map[string]string{
		"node.bucket":             "bucket",
		"node.local_path":         "local",
		"node.destination_path":   "destination",
		"node.compress":           "gzip",
		"transfer.stream_timeout": "stream-timeout",
		"transfer.chunk_size":     "chunk-size",
	})
	if err != nil {
		return err
	}

	client, err := openClient(ctx, log, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeClient(log, client)

	n, err := node.NewUpload(log, client, cfg.Node, o.Stream, cfg.Transfer)
	if err != nil {
		return err
	}

	rec := &flow.Recorder{}
	n.Handle(ctx, o.message, rec)
	return report(o.root.Out, rec)
}

// report prints every emitted output and fails unless the last one carries a
// true payload.
func report(w io.Writer, rec *flow.Recorder) error {
	enc := json.NewEncoder(w)
	for _, out := range rec.Outputs() {
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if out, ok := rec.Last(); !ok || !out.Payload {
		return errNoResult
	}
	return nil
}
