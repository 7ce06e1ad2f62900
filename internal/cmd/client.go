package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/gcsflow/internal/storage"
)

// openClient builds the storage client for cfg. Missing credentials are not
// an error here: the nil client makes the nodes report them per message.
func openClient(ctx context.Context, log logrus.FieldLogger, cfg storage.Config) (storage.Client, error) {
	client, err := storage.Open(ctx, cfg)
	if errors.Is(err, storage.ErrMissingCredentials) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialise storage client: %w", err)
	}

	backend := "gcs"
	if cfg.LocalRoot != "" {
		backend = "local"
	}
	log.WithField("backend", backend).Debug("Storage client ready")
	return client, nil
}

func closeClient(log logrus.FieldLogger, client storage.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("Failed to close storage client")
	}
}
