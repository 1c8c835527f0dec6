// Package app provides the application context and dependency management
// for the tierforge CLI. It follows idiomatic Go patterns for CLI
// applications by centralizing configuration, dependency injection, and
// lifecycle management.
package app

import (
	"github.com/rs/zerolog"

	"github.com/eftimios/tierforge/cmd/application"
	"github.com/eftimios/tierforge/pkg/errors"
	"github.com/eftimios/tierforge/pkg/registry"
	"github.com/eftimios/tierforge/pkg/tiers"
)

// Compile-time interface check to ensure proper implementation.
var _ application.Application = (*App)(nil)

// App represents the tierforge application with all its dependencies.
// It provides a centralized place for configuration, logging, and the
// tier deriver, following the dependency injection pattern.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Deriver shared by all commands
	deriver *tiers.Deriver
}

// Option customizes an App during construction.
type Option func(*App) error

// WithDeriver overrides the default tier deriver.
func WithDeriver(d *tiers.Deriver) Option {
	return func(a *App) error {
		a.deriver = d
		return nil
	}
}

// New creates a new App instance with the given version information.
// The app is initialized with default configuration that can be
// customized using functional options.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	// Initialize logger
	logger := NewLogger(config)
	app.logger = &logger

	// Default deriver with the reference rules
	app.deriver = tiers.NewDeriver()

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Deriver returns the configured tier deriver.
func (a *App) Deriver() *tiers.Deriver {
	return a.deriver
}

// Store returns a registry store rooted at dir, falling back to the
// configured lrs directory when dir is empty.
func (a *App) Store(dir string) registry.Store {
	if dir == "" {
		dir = a.config.LRSDir
	}
	return registry.NewFileStore(dir)
}

// Registries returns the configured registry names in processing order.
func (a *App) Registries() []string {
	out := make([]string, len(a.config.Registries))
	copy(out, a.config.Registries)
	return out
}
