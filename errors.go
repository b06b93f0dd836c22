package pubsite

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredField is returned by NewPage when a field the page
	// kind requires is absent. The concrete error is a *FieldError.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrRender is returned when a page lacks data its layout needs.
	ErrRender = errors.New("render error")

	// ErrDuplicatePermalink is reported when two sources would be written to
	// the same output path.
	ErrDuplicatePermalink = errors.New("duplicate permalink")
)

// FieldError names the missing field.
type FieldError struct {
	Kind  Kind
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrMissingRequiredField, e.Kind, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingRequiredField
}

// FileError ties a failure to the source file it came from.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}
