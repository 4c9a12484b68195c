package assets

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an update or delete targets a row that
// does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a missing or malformed input. It is always
// returned before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UploadError reports a blob store failure. Nothing was written to the
// table store.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// WriteError reports a table store failure and carries the store's message.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
