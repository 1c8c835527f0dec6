// Package constants provides shared constants used throughout the tierforge
// codebase. This includes file permissions, well-known registry names, and
// formatting values that should be consistent across the application.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Registry constants define the well-known registry layout
const (
	// DefaultLRSDir is the default directory holding the preset registries,
	// relative to the working directory.
	DefaultLRSDir = "lrs"

	// StyleRegistry is the file name of the style preset registry.
	StyleRegistry = "style_config.json"

	// PersonRegistry is the file name of the person preset registry.
	PersonRegistry = "person_config.json"

	// DataKey is the required top-level key of every registry document.
	DataKey = "data"
)

// Output formatting constants
const (
	// JSONIndent is the indentation used when writing registry documents.
	JSONIndent = "    "
)
