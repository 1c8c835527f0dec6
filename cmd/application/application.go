// Package application provides the application interface for tierforge
// commands.
//
// The Application interface defines the contract between the application
// layer and command implementations, enabling dependency injection and
// testability.
//
// Design Principles:
//   - Accept interfaces, return structs (Go proverb)
//   - Define interfaces where they're used, not where they're implemented
//   - Keep interfaces small and focused
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            store := app.Store("")
//	            doc, err := store.Load(cmd.Context(), "style_config.json")
//	            // ...
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/eftimios/tierforge/pkg/registry"
	"github.com/eftimios/tierforge/pkg/tiers"
)

// Application provides the application interface that commands need.
// The App struct from cmd/tierforge/app implements this interface,
// providing dependency injection for commands while keeping them testable
// against the Mock below.
type Application interface {
	// Store returns a registry store rooted at dir, or at the configured
	// default directory when dir is empty.
	Store(dir string) registry.Store

	// Deriver returns the configured tier deriver.
	Deriver() *tiers.Deriver

	// Registries returns the configured registry file names, in processing
	// order.
	Registries() []string

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// Version returns the build version string.
	Version() string
}

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function
// field. If a function field is nil, the method returns a default value.
type Mock struct {
	StoreFunc      func(dir string) registry.Store
	DeriverFunc    func() *tiers.Deriver
	RegistriesFunc func() []string
	LoggerFunc     func() *zerolog.Logger
	VersionFunc    func() string
}

// Store returns a store using the mock function or nil.
func (m *Mock) Store(dir string) registry.Store {
	if m.StoreFunc != nil {
		return m.StoreFunc(dir)
	}
	return nil
}

// Deriver returns a deriver using the mock function or the default deriver.
func (m *Mock) Deriver() *tiers.Deriver {
	if m.DeriverFunc != nil {
		return m.DeriverFunc()
	}
	return tiers.NewDeriver()
}

// Registries returns registry names using the mock function or nil.
func (m *Mock) Registries() []string {
	if m.RegistriesFunc != nil {
		return m.RegistriesFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}
