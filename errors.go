package carve

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Status is the result enumeration every long-running carver operation
// reports. The zero value, StatusOK, means the call completed normally.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusOutOfMemory
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusOutOfMemory:
		return "out_of_memory"
	case StatusCancelled:
		return "user_cancel"
	default:
		return "unknown"
	}
}

// Error wraps a Status with the operation-specific message that produced it.
// It satisfies errors.Is against the package sentinels below so callers can
// branch on category without string matching.
type Error struct {
	Status Status
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("carve: %s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("carve: %s: %s", e.Op, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCancelled) and errors.Is(err, ErrOutOfMemory)
// match any *Error carrying the corresponding Status, regardless of Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == t.Status
}

// Sentinel statuses, compared against with errors.Is.
var (
	ErrOutOfMemory          = &Error{Status: StatusOutOfMemory}
	ErrCancelled            = &Error{Status: StatusCancelled}
	ErrUnsupportedImageType = pkgerrors.New("carve: unsupported image type configuration")
)

func newError(op string, err error) *Error {
	return &Error{Status: StatusError, Op: op, Err: err}
}

func outOfMemory(op string, err error) *Error {
	return &Error{Status: StatusOutOfMemory, Op: op, Err: err}
}

func cancelled(op string) *Error {
	return &Error{Status: StatusCancelled, Op: op}
}

// IsCancelled reports whether err denotes a cooperative cancellation.
func IsCancelled(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status == StatusCancelled
	}
	return false
}

// IsOutOfMemory reports whether err denotes a failed allocation.
func IsOutOfMemory(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status == StatusOutOfMemory
	}
	return false
}
