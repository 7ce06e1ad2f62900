package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/gcsflow/internal/flow"
	"github.com/tomasbasham/gcsflow/internal/node"
)

type CreateBucketOptions struct {
	root *GCSFlowOptions

	Bucket       string
	Location     string
	StorageClass string
}

var (
	createBucketLong = templates.LongDesc(`
		Create the configured bucket. Creating a bucket that already exists
		fails.`)

	createBucketExample = templates.Examples(`
		# Create a regional bucket
		gcsflow create-bucket --bucket my-bucket --location europe-west2

		# Create a bucket with a non-default storage class
		gcsflow create-bucket --bucket archive --storage-class COLDLINE`)
)

func NewCreateBucketOptions(root *GCSFlowOptions) *CreateBucketOptions {
	return &CreateBucketOptions{
		root: root,
	}
}

func NewCreateBucketCommand(o *CreateBucketOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "create-bucket",
		DisableFlagsInUseLine: true,
		Short:                 "Create a bucket",
		Long:                  createBucketLong,
		Example:               createBucketExample,
		Args:                  cobra.NoArgs,
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
	flags.StringVarP(&o.Bucket, "bucket", "b", "", "Name of the bucket to create")
	flags.StringVar(&o.Location, "location", "", "Bucket location, e.g. EU or europe-west2")
	flags.StringVar(&o.StorageClass, "storage-class", "", "Default storage class of the bucket")

	return cmd
}

func (o *CreateBucketOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *CreateBucketOptions) Validate() error {
	return nil
}

func (o *CreateBucketOptions) Run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := o.root.loadConfig(cmd, map[string]string{
		"node.bucket":        "bucket",
		"node.location":      "location",
		"node.storage_class": "storage-class",
	})
	if err != nil {
		return err
	}

	client, err := openClient(ctx, log, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeClient(log, client)

	rec := &flow.Recorder{}
	node.NewCreateBucket(log, client, cfg.Node).Handle(ctx, flow.Message{}, rec)
	return report(o.root.Out, rec)
}
