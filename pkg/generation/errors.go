package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest is returned when a request cannot be built from the
	// given input, e.g. an unknown length class or an empty model name.
	ErrMalformedRequest = errors.New("malformed generation request")

	// ErrNoImage is the failure recorded when an image stream ends without
	// ever delivering a non-empty image payload.
	ErrNoImage = errors.New("stream ended without an image")

	errUnknownFailure = errors.New("generation failed")
)

// InvalidStateError is returned when a session operation is invoked in a
// status that does not allow it.
type InvalidStateError struct {
	Op     string
	Status Status
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s session in status %s", e.Op, e.Status)
}

// StreamError wraps a failure of the remote stream. The session that
// produced it is Failed.
type StreamError struct {
	Cause error
}

func (e *StreamError) Error() string {
	return "generation stream failed: " + e.Cause.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}
