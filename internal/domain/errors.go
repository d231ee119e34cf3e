package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("resource not found")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrClaimNotFound         = errors.New("claim not found")
	ErrClaimAlreadyExists    = errors.New("claim already exists for source document")
	ErrExtractionNotFound    = errors.New("canonical extraction not found")
	ErrUnsupportedMimeType   = errors.New("unsupported mime type")
	ErrDocumentAlreadyQueued = errors.New("document already queued or in flight")
	ErrQueueStopped          = errors.New("processing queue is stopped")
	ErrMissingOrganization   = errors.New("organization id is required")
)

// MalformedDocumentError means none of a document class's anchor fields were
// present. The document is probably not of that class; retrying will not help.
type MalformedDocumentError struct {
	Class   DocumentClass
	Anchors []string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed %s document: none of the anchor fields %v present", e.Class, e.Anchors)
}

// ExtractionServiceError wraps a failed call to the external extraction service.
type ExtractionServiceError struct {
	Provider string
	Page     int
	Err      error
}

func (e *ExtractionServiceError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("extraction service %s failed on page %d: %v", e.Provider, e.Page, e.Err)
	}
	return fmt.Sprintf("extraction service %s failed: %v", e.Provider, e.Err)
}

func (e *ExtractionServiceError) Unwrap() error {
	return e.Err
}

// Temporary marks extraction failures as retryable.
func (e *ExtractionServiceError) Temporary() bool {
	return true
}

// StorageError wraps an object storage failure. NotFound errors are permanent.
type StorageError struct {
	Op       string
	Key      string
	NotFound bool
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the storage operation may succeed.
func (e *StorageError) Temporary() bool {
	return !e.NotFound
}

// ValidationError means a canonical record violated a post-transform invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

type temporary interface {
	Temporary() bool
}

// IsTransient reports whether err is worth retrying. Any error in the chain
// exposing Temporary() decides; everything else is permanent.
func IsTransient(err error) bool {
	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return false
}
