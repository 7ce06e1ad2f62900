package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/gcsflow/internal/node"
	"github.com/tomasbasham/gcsflow/internal/operation"
	"github.com/tomasbasham/gcsflow/internal/server"
)

type ServeOptions struct {
	root *GCSFlowOptions

	Port   int
	Bucket string
}

var (
	serveLong = templates.LongDesc(`
		Start the HTTP server. Uploads and bucket creation are accepted as
		operations that run in the background; poll an operation to read
		its payload.`)

	serveExample = templates.Examples(`
		# Start on the default port
		gcsflow serve --bucket my-bucket

		# Start on a custom port
		gcsflow serve --port 9090 --bucket my-bucket`)
)

func NewServeOptions(root *GCSFlowOptions) *ServeOptions {
	return &ServeOptions{
		root: root,
	}
}

func NewServeCommand(o *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the gcsflow HTTP server",
		Long:    serveLong,
		Example: serveExample,
		Args:    cobra.NoArgs,
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

	cmd.Flags().IntVarP(&o.Port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVarP(&o.Bucket, "bucket", "b", "", "Bucket the nodes act on")

	return cmd
}

func (o *ServeOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *ServeOptions) Validate() error {
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	return nil
}

func (o *ServeOptions) Run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := o.root.loadConfig(cmd, map[string]string{
		"server.port": "port",
		"node.bucket": "bucket",
	})
	if err != nil {
		return err
	}

	client, err := openClient(ctx, log, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeClient(log, client)

	upload, err := node.NewUpload(log, client, cfg.Node, false, cfg.Transfer)
	if err != nil {
		return err
	}
	uploadStream, err := node.NewUpload(log, client, cfg.Node, true, cfg.Transfer)
	if err != nil {
		return err
	}

	srv := server.New(log, operation.NewMemoryStore(), server.Nodes{
		Upload:       upload,
		UploadStream: uploadStream,
		CreateBucket: node.NewCreateBucket(log, client, cfg.Node),
	}, cfg.Server)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.WithField("addr", addr).Info("Starting gcsflow server")
	return srv.ListenAndServe(ctx, addr)
}
