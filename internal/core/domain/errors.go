package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Directory Errors.

	// ErrExportFailed indicates the directory exporter could not produce a file.
	ErrExportFailed = errors.New("directory export failed")

	// ErrMalformedRecord indicates a record failed the required-field checks.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrSelfManaged indicates a record names itself as its own manager.
	ErrSelfManaged = errors.New("record is its own manager")

	// ErrMissingIdentity indicates a user lacks the keys needed for registration.
	ErrMissingIdentity = errors.New("missing identity")

	// ErrDuplicateIdentity indicates two records claim the same identity key.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrUnresolvedReference indicates a manager or report reference matched no user.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrIdentityMapFrozen indicates a registration after the load phase ended.
	ErrIdentityMapFrozen = errors.New("identity map is frozen")

	// Publish Errors.

	// ErrUploadRejected indicates the blob upload did not return HTTP 200.
	ErrUploadRejected = errors.New("batch upload rejected")

	// ErrNotConfigured indicates a required setting is missing.
	ErrNotConfigured = errors.New("not configured")
)

// DuplicateIdentityError describes a registration that targeted a key
// already owned by another user. The first registration keeps the key.
type DuplicateIdentityError struct {
	Key      string
	Existing string
	Incoming string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("duplicate identity %q: owned by %s, rejected %s", e.Key, e.Existing, e.Incoming)
}

// Unwrap allows errors.Is(err, ErrDuplicateIdentity).
func (e *DuplicateIdentityError) Unwrap() error {
	return ErrDuplicateIdentity
}
