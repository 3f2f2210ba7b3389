package liquor

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// StoredTemplate is a named template source held by a TemplateStore.
type StoredTemplate struct {
	// Name is the template name used by RenderNamed and the include tag.
	// Names may contain "/" to group templates, e.g. "partials/header".
	Name string `json:"name"`

	// Source is the raw template source.
	Source string `json:"source"`

	// Version starts at 1 and increases with every Save of the same name.
	Version int `json:"version"`

	// Metadata contains arbitrary key-value pairs for user-defined data.
	Metadata map[string]string `json:"metadata,omitempty"`

	// CreatedAt is when the name was first saved.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the current version was saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateStore is the interface for pluggable template sources.
// Implementations must be safe for concurrent use.
type TemplateStore interface {
	// Get retrieves the current version of a template by name.
	// Returns an error matching ErrTemplateNotFound if the name is unknown.
	Get(ctx context.Context, name string) (*StoredTemplate, error)

	// Save stores a template. Version, CreatedAt and UpdatedAt are set by
	// the store and written back to tmpl.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete removes a template by name.
	// Returns an error matching ErrTemplateNotFound if the name is unknown.
	Delete(ctx context.Context, name string) error

	// List returns all template names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Exists checks if a template with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreDriver is a factory for creating stores.
// Drivers register themselves during init().
type StoreDriver interface {
	// Open creates a new store. The connection string is driver-specific.
	Open(connectionString string) (TemplateStore, error)
}

// Store driver registry
var (
	storeDriversMu sync.RWMutex
	storeDrivers   = make(map[string]StoreDriver)
)

// RegisterStoreDriver registers a store driver by name.
// Panics if the driver is nil or the name is already registered.
func RegisterStoreDriver(name string, driver StoreDriver) {
	storeDriversMu.Lock()
	defer storeDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStoreDriver)
	}
	if _, exists := storeDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storeDrivers[name] = driver
}

// OpenStore opens a store using the named driver.
//
// Example:
//
//	store, err := liquor.OpenStore("memory", "")
//	store, err := liquor.OpenStore("filesystem", "/path/to/templates")
func OpenStore(driverName, connectionString string) (TemplateStore, error) {
	storeDriversMu.RLock()
	driver, ok := storeDrivers[driverName]
	storeDriversMu.RUnlock()

	if !ok {
		return nil, &StoreError{Message: ErrMsgStoreDriverNotFound, Name: driverName}
	}

	return driver.Open(connectionString)
}

// ListStoreDrivers returns the names of all registered store drivers, sorted.
func ListStoreDrivers() []string {
	storeDriversMu.RLock()
	defer storeDriversMu.RUnlock()

	names := make([]string, 0, len(storeDrivers))
	for name := range storeDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store error message constants
const (
	ErrMsgNilStoreDriver          = "store driver is nil"
	ErrMsgDriverAlreadyRegistered = "store driver already registered"
	ErrMsgStoreDriverNotFound     = "store driver not found"
	ErrMsgStoreClosed             = "store is closed"
	ErrMsgInvalidTemplateName     = "invalid template name"
	ErrMsgPathTraversalDetected   = "path traversal detected in template name"
)

// StoreError represents a store-related error.
type StoreError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg += ": " + e.Name
		if e.Version > 0 {
			msg += " v" + strconv.Itoa(e.Version)
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreClosedError creates an error for operations on a closed store.
func NewStoreClosedError() error {
	return &StoreError{Message: ErrMsgStoreClosed}
}

// ValidateTemplateName checks that name is usable by every store: not
// empty, relative, "/"-separated, and free of ".." segments.
func ValidateTemplateName(name string) error {
	if name == "" || strings.TrimSpace(name) != name {
		return &StoreError{Message: ErrMsgInvalidTemplateName, Name: name}
	}
	if strings.ContainsAny(name, "\\\x00") || strings.HasPrefix(name, "/") {
		return &StoreError{Message: ErrMsgInvalidTemplateName, Name: name}
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return &StoreError{Message: ErrMsgPathTraversalDetected, Name: name}
		}
		if seg == "" || seg == "." {
			return &StoreError{Message: ErrMsgInvalidTemplateName, Name: name}
		}
	}
	if path.Clean(name) != name {
		return &StoreError{Message: ErrMsgInvalidTemplateName, Name: name}
	}
	return nil
}

// copyStoredTemplate returns a deep copy so callers cannot mutate store state.
func copyStoredTemplate(t *StoredTemplate) *StoredTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.Metadata = copyStringMap(t.Metadata)
	return &c
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
