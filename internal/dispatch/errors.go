package dispatch

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind categorizes dispatch failures
type ErrorKind int

const (
	// KindSinkFailure means the sink reported an error
	KindSinkFailure ErrorKind = iota
	// KindTimeout means no acknowledgement arrived in time
	KindTimeout
	// KindCanceled means the caller cancelled the request
	KindCanceled
	// KindUnsupported means the sink lacks a required capability
	KindUnsupported
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindSinkFailure:
		return "SinkFailure"
	case KindTimeout:
		return "Timeout"
	case KindCanceled:
		return "Canceled"
	case KindUnsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a runtime dispatch failure
type Error struct {
	Kind    ErrorKind
	Op      string        // "dispatch" or "dispatch program"
	Timeout time.Duration // Effective timeout for KindTimeout
	Err     error         // Underlying sink or context error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		if e.Timeout > 0 {
			return fmt.Sprintf("%s: timed out after %s waiting for the display", e.Op, e.Timeout)
		}
		return fmt.Sprintf("%s: timed out waiting for the display", e.Op)
	case KindCanceled:
		return fmt.Sprintf("%s: canceled", e.Op)
	case KindUnsupported:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: sink failure: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the dispatch error kind from err
func KindOf(err error) (ErrorKind, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind, true
	}
	return 0, false
}

// IsTimeout reports whether err is a dispatch timeout
func IsTimeout(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTimeout
}

// IsSinkFailure reports whether err is a sink failure
func IsSinkFailure(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindSinkFailure
}
