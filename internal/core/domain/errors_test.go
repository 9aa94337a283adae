package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrExportFailed", ErrExportFailed},
		{"ErrMalformedRecord", ErrMalformedRecord},
		{"ErrSelfManaged", ErrSelfManaged},
		{"ErrMissingIdentity", ErrMissingIdentity},
		{"ErrDuplicateIdentity", ErrDuplicateIdentity},
		{"ErrUnresolvedReference", ErrUnresolvedReference},
		{"ErrIdentityMapFrozen", ErrIdentityMapFrozen},
		{"ErrUploadRejected", ErrUploadRejected},
		{"ErrNotConfigured", ErrNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestDuplicateIdentityError(t *testing.T) {
	err := &DuplicateIdentityError{Key: "a@corp.com", Existing: "CN=A1", Incoming: "CN=A2"}

	assert.Contains(t, err.Error(), "a@corp.com")
	assert.Contains(t, err.Error(), "CN=A1")
	assert.Contains(t, err.Error(), "CN=A2")
	assert.True(t, errors.Is(err, ErrDuplicateIdentity))

	wrapped := fmt.Errorf("register: %w", err)
	var dup *DuplicateIdentityError
	assert.True(t, errors.As(wrapped, &dup))
	assert.Equal(t, "a@corp.com", dup.Key)
}
