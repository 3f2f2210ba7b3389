package liquor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FilesystemStore reads and writes templates as plain files, so a
// directory of hand-written templates can be used as a store as-is.
//
// Directory structure:
//
//	<root>/
//	  page.liquid
//	  partials/
//	    header.liquid     # name "partials/header"
//
// Files carry no version history or metadata: Version is always 1 and
// both timestamps report the file's modification time.
type FilesystemStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStoreDriver is the driver for creating FilesystemStore instances.
type FilesystemStoreDriver struct{}

func init() {
	RegisterStoreDriver(StoreDriverNameFilesystem, &FilesystemStoreDriver{})
}

// Open creates a new FilesystemStore. The connection string is the root
// directory path.
func (d *FilesystemStoreDriver) Open(connectionString string) (TemplateStore, error) {
	return NewFilesystemStore(connectionString)
}

// NewFilesystemStore creates a filesystem store rooted at root.
// The root directory will be created if it doesn't exist.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, &StoreError{Message: ErrMsgInvalidStoreRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StoreError{Message: ErrMsgCreateStoreDir, Name: root, Cause: err}
	}
	return &FilesystemStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

// Get reads <root>/<name>.liquid.
func (s *FilesystemStore) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	filename := s.filename(name)
	info, err := os.Stat(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewTemplateNotFoundError(name)
		}
		return nil, &StoreError{Message: ErrMsgReadTemplate, Name: filename, Cause: err}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &StoreError{Message: ErrMsgReadTemplate, Name: filename, Cause: err}
	}

	return &StoredTemplate{
		Name:      name,
		Source:    string(data),
		Version:   1,
		CreatedAt: info.ModTime(),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Save writes the template source, creating parent directories as needed.
// Metadata is not persisted.
func (s *FilesystemStore) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateTemplateName(tmpl.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	filename := s.filename(tmpl.Name)
	if err := os.MkdirAll(filepath.Dir(filename), FilesystemDirPermissions); err != nil {
		return &StoreError{Message: ErrMsgCreateStoreDir, Name: filepath.Dir(filename), Cause: err}
	}
	if err := os.WriteFile(filename, []byte(tmpl.Source), FilesystemFilePermissions); err != nil {
		return &StoreError{Message: ErrMsgWriteTemplate, Name: filename, Cause: err}
	}

	info, err := os.Stat(filename)
	if err != nil {
		return &StoreError{Message: ErrMsgReadTemplate, Name: filename, Cause: err}
	}
	tmpl.Version = 1
	tmpl.CreatedAt = info.ModTime()
	tmpl.UpdatedAt = info.ModTime()
	return nil
}

// Delete removes the template file.
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateTemplateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if err := os.Remove(s.filename(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTemplateNotFoundError(name)
		}
		return &StoreError{Message: ErrMsgDeleteTemplate, Name: name, Cause: err}
	}
	return nil
}

// List walks the root directory and returns the names of all template
// files in sorted order.
func (s *FilesystemStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	names := []string{}
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != FilesystemExtension {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), FilesystemExtension))
		return nil
	})
	if err != nil {
		return nil, &StoreError{Message: ErrMsgReadStoreDir, Name: s.root, Cause: err}
	}

	sort.Strings(names)
	return names, nil
}

// Exists checks if the template file exists.
func (s *FilesystemStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := ValidateTemplateName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	_, err := os.Stat(s.filename(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &StoreError{Message: ErrMsgReadTemplate, Name: name, Cause: err}
}

// Close marks the store closed. Files are left in place.
func (s *FilesystemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FilesystemStore) filename(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name)+FilesystemExtension)
}

// Filesystem store error messages
const (
	ErrMsgInvalidStoreRoot = "invalid store root path"
	ErrMsgCreateStoreDir   = "failed to create store directory"
	ErrMsgReadStoreDir     = "failed to read store directory"
	ErrMsgWriteTemplate    = "failed to write template file"
	ErrMsgReadTemplate     = "failed to read template file"
	ErrMsgDeleteTemplate   = "failed to delete template"
)
