package drivels

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrNotFound      = errors.New("not found")
	ErrAmbiguousName = errors.New("ambiguous name")
	ErrTransient     = errors.New("transient remote error")
	ErrPermission    = errors.New("permission denied")
	ErrDriveError    = errors.New("drive error")
	ErrCache         = errors.New("cache error")
)

// NotFoundError reports which path component failed to resolve and the prefix
// that had resolved up to that point. It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	Component string
	Prefix    string
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("not found: no entry named '%s' under '%s'", err.Component, err.Prefix)
}

func (err *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguousNameError is returned by strict-mode resolution when more than one
// child matches a path component. It matches ErrAmbiguousName under errors.Is.
type AmbiguousNameError struct {
	Name    string
	Prefix  string
	Matches int
}

func (err *AmbiguousNameError) Error() string {
	return fmt.Sprintf("ambiguous name: %d entries named '%s' under '%s'", err.Matches, err.Name, err.Prefix)
}

func (err *AmbiguousNameError) Unwrap() error { return ErrAmbiguousName }

type wrapError struct {
	underlying error
	msg        string
	cause      error
}

var _ error = (*wrapError)(nil)

func newTransientError(msg string, cause error) error {
	return &wrapError{
		underlying: ErrTransient,
		msg:        msg,
		cause:      cause,
	}
}

func newPermissionError(msg string, cause error) error {
	return &wrapError{
		underlying: ErrPermission,
		msg:        msg,
		cause:      cause,
	}
}

func newDriveError(msg string, cause error) error {
	return &wrapError{
		underlying: ErrDriveError,
		msg:        msg,
		cause:      cause,
	}
}

func newCacheError(msg string, cause error) error {
	return &wrapError{
		underlying: ErrCache,
		msg:        msg,
		cause:      cause,
	}
}

func (err *wrapError) Error() string {
	if err == nil {
		return "(*wrapError)(nil)"
	}
	message := err.underlying.Error() + ": " + err.msg
	if err.cause != nil {
		message += ": " + err.cause.Error()
	}
	return message
}

func (err *wrapError) Unwrap() []error {
	if err.cause == nil {
		return []error{err.underlying}
	}
	return []error{err.underlying, err.cause}
}
