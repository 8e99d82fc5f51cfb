package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// An empty list is never reported as ErrNotFound.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Workspace Errors.

	// ErrNoActiveWorkspace indicates no workspace is selected.
	// Checked before any I/O; aborts the whole call.
	ErrNoActiveWorkspace = errors.New("no active workspace")

	// ErrUnsupportedStorage indicates a workspace names an unknown storage kind.
	ErrUnsupportedStorage = errors.New("unsupported storage kind")

	// ErrCrossStoreReference indicates an entity references a parent that
	// does not live in the same store.
	ErrCrossStoreReference = errors.New("reference does not resolve in the same store")

	// Authentication Errors.

	// ErrUnauthenticated indicates a remote operation was attempted without a bearer token.
	// No network call is made when this is returned.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrMustAuthenticate indicates migration was requested without an authenticated session.
	ErrMustAuthenticate = errors.New("must be authenticated to migrate data to the remote store")

	// Remote Errors.

	// ErrNetworkFailure indicates a transport error or a server-side (5xx) failure.
	ErrNetworkFailure = errors.New("network failure")

	// ErrValidationFailure indicates the record was rejected (remote 4xx or local validation).
	ErrValidationFailure = errors.New("validation failure")

	// Migration Errors.

	// ErrReferentialGap indicates a migrated entity references a parent that was not migrated.
	// It is logged and counted as a skip, never returned to the caller.
	ErrReferentialGap = errors.New("referential gap")
)

// Failure is a remote-store failure converted into a typed error.
// It unwraps to ErrNetworkFailure, ErrValidationFailure, ErrUnauthenticated
// or ErrNotFound.
type Failure struct {
	// Op names the operation, e.g. "create profile".
	Op string

	// StatusCode is the HTTP status, or 0 for transport errors.
	StatusCode int

	// Message is the server-provided detail, if any.
	Message string

	// Err is the classified sentinel.
	Err error
}

func (f *Failure) Error() string {
	if f.StatusCode == 0 {
		return fmt.Sprintf("%s: %v: %s", f.Op, f.Err, f.Message)
	}
	return fmt.Sprintf("%s: %v (status %d): %s", f.Op, f.Err, f.StatusCode, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// IsFailure reports whether err is a remote Failure other than not-found.
func IsFailure(err error) bool {
	var f *Failure
	if !errors.As(err, &f) {
		return false
	}
	return !errors.Is(f.Err, ErrNotFound)
}

// IsPrecondition reports whether err is a precondition error that must abort the call.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoActiveWorkspace) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrMustAuthenticate)
}
