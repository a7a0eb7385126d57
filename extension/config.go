package extension

// Config holds the Tally extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tally" or "tally" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Backend selects the store implementation: "memory", "file",
	// "sqlite", "postgres" or "mongo" (default: "memory"). The database
	// backends additionally need a grove database supplied via WithDatabase.
	Backend string `json:"backend" mapstructure:"backend" yaml:"backend"`

	// DataDir is the directory the file backend persists to
	// (default: "data/tally").
	DataDir string `json:"data_dir" mapstructure:"data_dir" yaml:"data_dir"`

	// CatalogPath points to the POS mapping catalog JSON file. When set, the
	// catalog is loaded at registration and extract processing is enabled.
	CatalogPath string `json:"catalog_path" mapstructure:"catalog_path" yaml:"catalog_path"`

	// SeedDefaults installs the default categories and the internal
	// supplier on start.
	SeedDefaults bool `json:"seed_defaults" mapstructure:"seed_defaults" yaml:"seed_defaults"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: "memory",
		DataDir: "data/tally",
	}
}
