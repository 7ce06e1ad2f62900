package node

import (
	"path/filepath"

	"github.com/tomasbasham/gcsflow/internal/flow"
)

// Config is the static configuration of a node.
type Config struct {
	// BucketName is the only source of the bucket; messages cannot override
	// it.
	BucketName string `mapstructure:"bucket" default:""`
	// LocalPath takes precedence over a message's localfilename.
	LocalPath string `mapstructure:"local_path" default:""`
	// DestinationPath takes precedence over a message's destinationfilename.
	DestinationPath string `mapstructure:"destination_path" default:""`
	// Compress gzips uploaded content.
	Compress bool `mapstructure:"compress" default:"false"`
	// Location and StorageClass apply to buckets created by the
	// create-bucket node.
	Location     string `mapstructure:"location" default:""`
	StorageClass string `mapstructure:"storage_class" default:""`
}

// Request is a single upload, resolved from a Config and a Message.
type Request struct {
	BucketName      string
	LocalPath       string
	DestinationPath string
	Compress        bool
}

// Resolve builds the Request for msg. The static value wins whenever it is
// set; the message only fills fields left empty. An empty destination falls
// back to the local file's base name.
func (c Config) Resolve(msg flow.Message) Request {
	req := Request{
		BucketName:      c.BucketName,
		LocalPath:       firstNonEmpty(c.LocalPath, msg.LocalFilename),
		DestinationPath: firstNonEmpty(c.DestinationPath, msg.DestinationFilename),
		Compress:        c.Compress,
	}
	if req.DestinationPath == "" && req.LocalPath != "" {
		req.DestinationPath = filepath.Base(req.LocalPath)
	}
	return req
}

func firstNonEmpty(static, override string) string {
	if static != "" {
		return static
	}
	return override
}
