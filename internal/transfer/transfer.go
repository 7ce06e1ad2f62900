// Package transfer moves a local file into an object store. Two strategies
// are provided: Buffered hands the whole file to the storage client in one
// call, Streamed pipes the file through an object writer chunk by chunk so the
// remote side sets the pace.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
)

const (
	StrategyBuffered = "buffered"
	StrategyStreamed = "streamed"
)

// Job describes one file transfer.
type Job struct {
	Bucket      string
	LocalPath   string
	Destination string
	Gzip        bool
}

// Strategy performs a transfer and blocks until it has either succeeded or
// failed.
type Strategy interface {
	Name() string
	Transfer(ctx context.Context, job Job) error
}

// Config holds the tunables of the streamed strategy.
type Config struct {
	// StreamTimeout bounds a streamed transfer from start to the final
	// acknowledgement of the object.
	StreamTimeout time.Duration `mapstructure:"stream_timeout" default:"30m"`
	// ChunkSize is a human readable size such as "16MiB". Each chunk is held
	// in memory while it is sent.
	ChunkSize string `mapstructure:"chunk_size" default:"16MiB"`
}

// ChunkBytes parses ChunkSize. An empty value yields zero, meaning the
// backend default.
func (c Config) ChunkBytes() (int, error) {
	if c.ChunkSize == "" {
		return 0, nil
	}
	n, err := units.RAMInBytes(c.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("transfer: invalid chunk size %q: %w", c.ChunkSize, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("transfer: invalid chunk size %q: must not be negative", c.ChunkSize)
	}
	return int(n), nil
}
