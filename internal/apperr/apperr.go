// Package apperr defines the closed set of error kinds the service reports.
// Transport layers map a Kind to a response; nothing outside this package
// should inspect concrete error types to decide how to respond.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind tags an error with its handling class.
type Kind int

const (
	// Internal is the zero value so untagged errors land here.
	Internal Kind = iota
	// InvalidInput is a request that cannot be interpreted at all, such as
	// malformed JSON or a job id in the wrong format.
	InvalidInput
	// Validation is a well-formed request whose content breaks the rules.
	Validation
	NotFound
	Upstream
	StoreUnavailable
	WorkerFailure
	Timeout
)

// Kinds lists every Kind. Mapping tables are expected to cover all of them.
var Kinds = []Kind{Internal, InvalidInput, Validation, NotFound, Upstream, StoreUnavailable, WorkerFailure, Timeout}

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Validation:
		return "validation_error"
	case NotFound:
		return "not_found"
	case Upstream:
		return "upstream_error"
	case StoreUnavailable:
		return "service_unavailable"
	case WorkerFailure:
		return "worker_failure"
	case Timeout:
		return "timeout"
	default:
		return "internal_error"
	}
}

// Error is a tagged error. Details carries human readable items such as
// validation summaries.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a tagged error wrapping err.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a tagged error with a formatted message and no cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds a validation error carrying a summary list.
func Invalid(op, message string, details ...string) *Error {
	return &Error{Kind: Validation, Op: op, Message: message, Details: details}
}

// KindOf reports the Kind of the outermost tagged error in err's chain.
// Untagged timeouts report Timeout; anything else untagged is Internal.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if IsTimeout(err) {
		return Timeout
	}
	return Internal
}

// Is reports whether err is tagged with kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsTimeout reports whether err stems from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Kind == Timeout {
			return true
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return false
}

// DetailsOf returns the details of the outermost tagged error, if any.
func DetailsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
