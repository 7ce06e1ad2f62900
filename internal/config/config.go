// Package config assembles the application configuration from, in order of
// increasing precedence: struct defaults, an optional YAML file, a .env file
// and the environment, and explicitly set command line flags.
//
// Environment variables are named GCSFLOW_<SECTION>_<KEY>, for example
// GCSFLOW_STORAGE_PROJECT_ID or GCSFLOW_TRANSFER_STREAM_TIMEOUT.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tomasbasham/gcsflow/internal/logging"
	"github.com/tomasbasham/gcsflow/internal/node"
	"github.com/tomasbasham/gcsflow/internal/server"
	"github.com/tomasbasham/gcsflow/internal/storage"
	"github.com/tomasbasham/gcsflow/internal/transfer"
)

const envPrefix = "GCSFLOW"

// Config holds all configuration for the application.
type Config struct {
	// Storage holds the credentials and backend selection.
	Storage storage.Config `mapstructure:"storage"`
	// Node holds the static node configuration.
	Node node.Config `mapstructure:"node"`
	// Transfer tunes the streamed upload strategy.
	Transfer transfer.Config `mapstructure:"transfer"`
	// Log holds configuration for the logger.
	Log logging.Config `mapstructure:"log"`
	// Server holds configuration for the HTTP intake.
	Server server.Config `mapstructure:"server"`
}

// Load reads the configuration. path names an optional YAML file and may be
// empty. bindings maps configuration keys such as "node.bucket" to flag names
// in flags; a bound flag only takes effect when it was set on the command
// line.
func Load(path string, flags *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	// Ignore error if file doesn't exist.
	_ = godotenv.Load()

	v := viper.New()

	// Register every key with its default so AutomaticEnv can resolve it.
	bindValues(v, Config{}, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	for key, name := range bindings {
		if flags == nil {
			break
		}
		f := flags.Lookup(name)
		if f == nil {
			return nil, fmt.Errorf("config: no flag %q for key %q", name, key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("config: failed to bind flag %q: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}

	return &cfg, nil
}

// bindValues walks the struct and registers the 'default' tag of every
// 'mapstructure' field with viper.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
