package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a form operation is attempted while a
	// submission is in flight.
	ErrBusy = errors.New("submission in progress")

	// ErrNotEditing is returned when a form operation needs a draft and
	// there is none.
	ErrNotEditing = errors.New("no draft is being edited")

	// ErrNotFound is returned by gateways when a record id does not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError reports a draft that failed a local check. It is raised
// before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// GatewayError reports a failed gateway read, write or delete.
type GatewayError struct {
	Op    string // query, insert, update, delete
	Table string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UploadError reports a failed media upload. The record write is never
// attempted after one.
type UploadError struct {
	Bucket string
	Name   string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s to %s: %v", e.Name, e.Bucket, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
