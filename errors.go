package precompress

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failure of a single work item
type ErrorKind string

const (
	KindFileTooLarge ErrorKind = "file_too_large"
	KindRead         ErrorKind = "read_error"
	KindTransform    ErrorKind = "transform_error"
	KindWrite        ErrorKind = "write_error"
)

// Sentinel returns the package error matching k
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindFileTooLarge:
		return ErrFileTooLarge
	case KindRead:
		return ErrRead
	case KindTransform:
		return ErrTransform
	case KindWrite:
		return ErrWrite
	default:
		return nil
	}
}

// ItemError is the failure outcome of one work item. It matches both the
// sentinel of its kind and the underlying cause with errors.Is.
type ItemError struct {
	Kind ErrorKind
	Item WorkItem
	Err  error
}

func newItemError(kind ErrorKind, item WorkItem, err error) *ItemError {
	return &ItemError{Kind: kind, Item: item, Err: err}
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Kind, e.Item.Path, e.Item.Codec, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func (e *ItemError) Is(target error) bool {
	sentinel := e.Kind.Sentinel()
	return sentinel != nil && errors.Is(sentinel, target)
}
