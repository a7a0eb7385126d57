package extension

import (
	"github.com/xraph/grove"

	tally "github.com/xraph/tally"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/store"
)

// Option configures the Tally Forge extension.
type Option func(*Extension)

// WithStore sets the store for the tally engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithDatabase supplies the grove database used by the sqlite backend.
func WithDatabase(db *grove.DB) Option {
	return func(e *Extension) {
		e.db = db
	}
}

// WithTallyOption passes a tally.Option through to the underlying engine.
func WithTallyOption(opt tally.Option) Option {
	return func(e *Extension) {
		e.tallyOpts = append(e.tallyOpts, opt)
	}
}

// WithPlugin registers a tally plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.tallyOpts = append(e.tallyOpts, tally.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBackend selects the store backend: "memory", "file" or "sqlite".
func WithBackend(backend string) Option {
	return func(e *Extension) { e.config.Backend = backend }
}

// WithDataDir sets the directory the file backend persists to.
func WithDataDir(dir string) Option {
	return func(e *Extension) { e.config.DataDir = dir }
}

// WithCatalogPath sets the POS mapping catalog file to load at registration.
func WithCatalogPath(path string) Option {
	return func(e *Extension) { e.config.CatalogPath = path }
}

// WithSeedDefaults installs the default categories and internal supplier on start.
func WithSeedDefaults() Option {
	return func(e *Extension) { e.config.SeedDefaults = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
