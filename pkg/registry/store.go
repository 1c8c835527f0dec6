package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/eftimios/tierforge/pkg/constants"
	"github.com/eftimios/tierforge/pkg/errors"
)

// Store loads and saves registry documents by name. Implementations own
// path resolution and serialization; callers only see whole documents.
type Store interface {
	// Load reads and parses the named registry. A missing registry
	// reports errors.ErrNotFound.
	Load(ctx context.Context, name string) (*Document, error)

	// Save writes the named registry back whole.
	Save(ctx context.Context, name string, doc *Document) error
}

// Compile-time interface check to ensure proper implementation.
var _ Store = (*FileStore)(nil)

// FileStore is a directory-backed Store. Registries named *.json are
// pretty-printed JSON; *.yaml / *.yml registries are read and written as
// YAML for hand-edited preset files.
type FileStore struct {
	dir      string
	readOnly bool
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithReadOnly makes Save fail with ErrReadOnly. Useful for dry runs and
// tests that must not touch the working tree.
func WithReadOnly(readOnly bool) FileStoreOption {
	return func(s *FileStore) {
		s.readOnly = readOnly
	}
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Load reads and parses the named registry file.
func (s *FileStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("registry", name)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	format := "json"
	if isYAML(name) {
		format = "yaml"
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return nil, errors.WrapParse(format, name, err)
		}
	}

	doc := &Document{}
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, errors.NewParseError(format, name, err.Error(), err)
	}
	return doc, nil
}

// Save writes the named registry file whole. JSON output is pretty-printed
// with stable indentation.
func (s *FileStore) Save(ctx context.Context, name string, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.readOnly {
		return errors.ErrReadOnly
	}

	data, err := json.MarshalIndent(doc, "", constants.JSONIndent)
	if err != nil {
		return errors.WrapResource("save", "registry", name, err)
	}
	if isYAML(name) {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return errors.WrapResource("save", "registry", name, err)
		}
	}

	path := filepath.Join(s.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// isYAML reports whether the registry name uses a YAML extension.
func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
