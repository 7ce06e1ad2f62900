package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cliflag "github.com/tomasbasham/cli-runtime/flag"
	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/printer"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/gcsflow/internal/config"
	"github.com/tomasbasham/gcsflow/internal/logging"
)

var (
	rootLong = templates.LongDesc(`
		Upload files to Google Cloud Storage buckets and provision those
		buckets.

		Settings are read from an optional YAML file, the environment
		(GCSFLOW_<SECTION>_<KEY>) and command line flags, in increasing
		order of precedence.`)

	rootExamples = templates.Examples(`
		# Upload a file using credentials from the environment
		GCSFLOW_STORAGE_PROJECT_ID=my-project \
		GCSFLOW_STORAGE_CREDENTIALS_PATH=key.json \
		gcsflow upload --bucket my-bucket ./report.csv reports/report.csv

		# Work against a local directory instead of GCS
		gcsflow --local-root /tmp/buckets create-bucket --bucket scratch`)

	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

// GCSFlowOptions defines the options shared by every `gcsflow` command.
type GCSFlowOptions struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	ProjectID   string
	Credentials string
	LocalRoot   string

	iooption.IOStreams
}

// NewGCSFlowOptions provides an initialised GCSFlowOptions instance.
func NewGCSFlowOptions(streams iooption.IOStreams) *GCSFlowOptions {
	return &GCSFlowOptions{
		IOStreams: streams,
	}
}

// NewRootCommand creates the `gcsflow` command with default arguments.
func NewRootCommand() *cobra.Command {
	options := NewGCSFlowOptions(iooption.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	})

	return NewRootCommandWithArgs(options)
}

// NewRootCommandWithArgs creates the `gcsflow` command and its nested
// children.
func NewRootCommandWithArgs(o *GCSFlowOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "gcsflow [command]",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Google Cloud Storage upload and bucket tool",
		Long:                  rootLong,
		Example:               rootExamples,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}

	printerOpts := printer.WarningPrinterOptions{Color: true}
	printer := printer.NewWarningPrinter(o.ErrOut, printerOpts)
	cmd.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc(printer))

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&o.ConfigPath, "config", "", "Path to a YAML configuration file")
	pflags.StringVar(&o.LogLevel, "log-level", "info", "Log level ("+strings.Join(logging.Levels(), ", ")+")")
	pflags.StringVar(&o.LogFormat, "log-format", "text", "Log format (text, json)")
	pflags.StringVar(&o.ProjectID, "project-id", "", "Google Cloud project that owns created buckets")
	pflags.StringVar(&o.Credentials, "credentials", "", "Path to a service account key file")
	pflags.StringVar(&o.LocalRoot, "local-root", "", "Serve buckets as directories under this path instead of GCS")

	cmd.AddCommand(NewUploadCommand(NewUploadOptions(o)))
	cmd.AddCommand(NewCreateBucketCommand(NewCreateBucketOptions(o)))
	cmd.AddCommand(NewServeCommand(NewServeOptions(o)))

	// The globlal normalisation function ensures that all flags specified meet
	// the desired format, changing users' input if necessary.
	cmd.SetGlobalNormalizationFunc(cliflag.WordSepNormalizeFunc())

	return cmd
}

// rootBindings maps configuration keys to the persistent flags above.
var rootBindings = map[string]string{
	"log.level":                "log-level",
	"log.format":               "log-format",
	"storage.project_id":       "project-id",
	"storage.credentials_path": "credentials",
	"storage.local_root":       "local-root",
}

// loadConfig reads the configuration for cmd, layering its own flag bindings
// over the persistent ones, and builds the logger.
func (o *GCSFlowOptions) loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, *logrus.Logger, error) {
	all := make(map[string]string, len(rootBindings)+len(bindings))
	for k, v := range rootBindings {
		all[k] = v
	}
	for k, v := range bindings {
		all[k] = v
	}

	cfg, err := config.Load(o.ConfigPath, cmd.Flags(), all)
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.New(cfg.Log, o.ErrOut)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func versionInfo() string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
