package liquor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStoreDriver hands out a fixed store
type stubStoreDriver struct {
	store TemplateStore
	err   error
}

func (d *stubStoreDriver) Open(string) (TemplateStore, error) {
	return d.store, d.err
}

func TestStoreDriverRegistry(t *testing.T) {
	t.Run("builtin drivers are registered", func(t *testing.T) {
		drivers := ListStoreDrivers()
		assert.Contains(t, drivers, StoreDriverNameMemory)
		assert.Contains(t, drivers, StoreDriverNameFilesystem)
		assert.Contains(t, drivers, StoreDriverNamePostgres)
		assert.IsIncreasing(t, drivers)
	})

	t.Run("register and open custom driver", func(t *testing.T) {
		store := NewMemoryStore()
		RegisterStoreDriver("stub-open", &stubStoreDriver{store: store})

		opened, err := OpenStore("stub-open", "")
		require.NoError(t, err)
		assert.Same(t, store, opened)
	})

	t.Run("driver error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		RegisterStoreDriver("stub-fail", &stubStoreDriver{err: boom})

		_, err := OpenStore("stub-fail", "")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStore("nope", "")
		var se *StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ErrMsgStoreDriverNotFound, se.Message)
		assert.Equal(t, "nope", se.Name)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterStoreDriver(StoreDriverNameMemory, &MemoryStoreDriver{})
		})
	})

	t.Run("nil driver panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterStoreDriver("stub-nil", nil)
		})
	})
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"simple", "page", ""},
		{"nested", "partials/header", ""},
		{"dotted file", "emails/welcome.v2", ""},
		{"empty", "", ErrMsgInvalidTemplateName},
		{"surrounding space", " page", ErrMsgInvalidTemplateName},
		{"absolute", "/etc/passwd", ErrMsgInvalidTemplateName},
		{"backslash", `partials\header`, ErrMsgInvalidTemplateName},
		{"nul byte", "a\x00b", ErrMsgInvalidTemplateName},
		{"parent segment", "../secret", ErrMsgPathTraversalDetected},
		{"inner parent segment", "a/../../b", ErrMsgPathTraversalDetected},
		{"empty segment", "a//b", ErrMsgInvalidTemplateName},
		{"dot segment", "a/./b", ErrMsgInvalidTemplateName},
		{"trailing slash", "a/", ErrMsgInvalidTemplateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateName(tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var se *StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      *StoreError
		expected string
	}{
		{"message only", &StoreError{Message: ErrMsgStoreClosed}, "store is closed"},
		{"with name", &StoreError{Message: ErrMsgWriteTemplate, Name: "page"}, "failed to write template file: page"},
		{"with version", &StoreError{Message: ErrMsgWriteTemplate, Name: "page", Version: 3}, "failed to write template file: page v3"},
		{"with cause", &StoreError{Message: ErrMsgWriteTemplate, Name: "page", Cause: cause}, "failed to write template file: page: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}

	assert.ErrorIs(t, &StoreError{Message: ErrMsgWriteTemplate, Cause: cause}, cause)
}

func TestCopyStoredTemplate(t *testing.T) {
	assert.Nil(t, copyStoredTemplate(nil))

	orig := &StoredTemplate{Name: "a", Source: "x", Metadata: map[string]string{"k": "v"}}
	c := copyStoredTemplate(orig)
	c.Metadata["k"] = "changed"
	c.Source = "y"

	assert.Equal(t, "v", orig.Metadata["k"])
	assert.Equal(t, "x", orig.Source)
}
