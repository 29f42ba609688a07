package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by destination lookups that hit a missing resource.
var ErrNotFound = errors.New("not found")

// FetchError means the source export could not be retrieved.
type FetchError struct {
	URL    string
	Status int // 0 when the request never got a response
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MalformedInputError means the export document does not parse
// or breaks a record invariant (missing or duplicate URL).
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed export: %s: %v", e.Reason, e.Err)
	}
	return "malformed export: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// UnsupportedValueError means a value is neither primitive nor accompanied by a media type.
type UnsupportedValueError struct {
	Path string
	Type string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value of type %s for %s: a media type is required", e.Type, e.Path)
}

// SyncError means a destination call returned a non-success status.
type SyncError struct {
	Method     string
	Path       string
	Status     int
	ErrorClass string // X-FluidDB-Error-Class, when sent
}

func (e *SyncError) Error() string {
	if e.ErrorClass != "" {
		return fmt.Sprintf("%s %s: status %d (%s)", e.Method, e.Path, e.Status, e.ErrorClass)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}
