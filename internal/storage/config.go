package storage

// Config binds a set of credentials to a storage project.
type Config struct {
	// ProjectID is the Google Cloud project that owns created buckets.
	ProjectID string `mapstructure:"project_id" default:""`
	// CredentialsPath is the service account key file used to authenticate.
	CredentialsPath string `mapstructure:"credentials_path" default:""`
	// Endpoint overrides the storage API endpoint, e.g. for an emulator.
	Endpoint string `mapstructure:"endpoint" default:""`
	// LocalRoot serves buckets as directories under this path instead of
	// talking to GCS.
	LocalRoot string `mapstructure:"local_root" default:""`
}

// Complete reports whether both the project and the credentials file are
// set.
func (c Config) Complete() bool {
	return c.ProjectID != "" && c.CredentialsPath != ""
}
