package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing document or referenced entity.
	ErrNotFound = errors.New("not found")
	// ErrFormat signals a malformed document (wrong GeoJSON type, bad coordinates).
	ErrFormat = errors.New("invalid document format")
	// ErrTransport signals a failure talking to the storage or search backend.
	ErrTransport = errors.New("transport error")
	// ErrServer signals an error reported by the search server.
	ErrServer = errors.New("search server error")
	// ErrInvalidInput signals invalid client input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownEntity signals an entity name that is not registered.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnauthorized signals missing or wrong credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals insufficient roles.
	ErrForbidden = errors.New("forbidden")
)

// Fault codes reported by search and storage failures.
const (
	FaultGeneric           = "1001"
	FaultConnectionRefused = "1004"
	FaultReadTimeout       = "1005"
	FaultDeleteFailed      = "1007"
	FaultClusterBlock      = "1011"
	FaultIndexMissing      = "1012"
)

// FormatError reports a document whose shape does not match the expected kind.
type FormatError struct {
	Expected string
	Got      string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", ErrFormat.Error(), e.Expected, e.Got)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// NotFoundError reports a reference whose target does not exist.
type NotFoundError struct {
	Collection string
	ID         any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%v: %s", e.Collection, e.ID, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransportError reports a failed round trip to a backend.
type TransportError struct {
	Op    string
	Fault string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Fault != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Fault, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// ServerError reports an error response from the search server.
type ServerError struct {
	Op     string
	Status int
	Fault  string
	Type   string
	Reason string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: status %d [%s] %s: %s", e.Op, e.Status, e.Fault, e.Type, e.Reason)
}

func (e *ServerError) Unwrap() error { return ErrServer }

// IsIndexMissing reports whether err is a server error about a missing index.
func IsIndexMissing(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Fault == FaultIndexMissing
}
