package infer

import (
	"fmt"
	"time"
)

// invalidPromptError signals an empty or malformed prompt sequence.
type invalidPromptError struct{ msg string }

func (e invalidPromptError) Error() string { return "invalid prompt: " + e.msg }

// ErrInvalidPrompt constructs an invalidPromptError.
func ErrInvalidPrompt(msg string) error { return invalidPromptError{msg: msg} }

// IsInvalidPrompt reports whether err indicates a rejected prompt (return 400).
func IsInvalidPrompt(err error) bool {
	_, ok := err.(invalidPromptError)
	return ok
}

// endpointUnavailableError signals that no model session is bound or ready.
type endpointUnavailableError struct{ msg string }

func (e endpointUnavailableError) Error() string { return "endpoint unavailable: " + e.msg }

// ErrEndpointUnavailable constructs an endpointUnavailableError.
func ErrEndpointUnavailable(msg string) error { return endpointUnavailableError{msg: msg} }

// IsEndpointUnavailable reports whether err indicates a missing session (return 503).
func IsEndpointUnavailable(err error) bool {
	_, ok := err.(endpointUnavailableError)
	return ok
}

// shapeMismatchError signals a response whose shape violates the recorded
// vocabulary size or the request length. It protects against silently
// decoding garbage.
type shapeMismatchError struct {
	axis string
	want int
	got  int
}

func (e shapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch on %s axis: want %d, got %d", e.axis, e.want, e.got)
}

// ErrShapeMismatch constructs a shapeMismatchError for the given axis.
func ErrShapeMismatch(axis string, want, got int) error {
	return shapeMismatchError{axis: axis, want: want, got: got}
}

// IsShapeMismatch reports whether err indicates a malformed endpoint response.
func IsShapeMismatch(err error) bool {
	_, ok := err.(shapeMismatchError)
	return ok
}

// endpointTimeoutError signals that the endpoint did not respond within the
// caller's bound for a single forward pass.
type endpointTimeoutError struct{ limit time.Duration }

func (e endpointTimeoutError) Error() string {
	return fmt.Sprintf("endpoint timeout after %s", e.limit)
}

// ErrEndpointTimeout constructs an endpointTimeoutError.
func ErrEndpointTimeout(limit time.Duration) error { return endpointTimeoutError{limit: limit} }

// IsEndpointTimeout reports whether err indicates an unresponsive endpoint (return 504).
func IsEndpointTimeout(err error) bool {
	_, ok := err.(endpointTimeoutError)
	return ok
}
