package linkpreview

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed reports an operation against a closed pipeline.
	ErrClosed = errors.New("linkpreview: closed")

	// ErrDisabled reports an operation against a pipeline constructed with
	// Options.Disabled.
	ErrDisabled = errors.New("linkpreview: disabled")
)

// FetchError describes a failed metadata fetch. It never escapes Resolve as a
// Go error; it travels inside Result.Err so failure reasons stay observable
// while consumers only ever see a soft miss.
type FetchError struct {
	URL    string
	Status int    // HTTP status; 0 when the request never completed
	Reason string // short classification, e.g. "unexpected status"
	Err    error  // underlying cause, if any
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetch %q: %s: %v", e.URL, e.Reason, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch %q: %s (http %d)", e.URL, e.Reason, e.Status)
	default:
		return fmt.Sprintf("fetch %q: %s", e.URL, e.Reason)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
