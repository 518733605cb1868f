package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLocator is returned for an empty page title or URL.
	ErrEmptyLocator = errors.New("empty locator")

	// ErrBodyTooLarge is returned when a response exceeds MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")
)

// RetrievalError reports that a document could not be retrieved: a network
// failure, a timeout, a non-2xx status or an oversized body.
type RetrievalError struct {
	// Locator is the page title or URL that was requested.
	Locator string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	Err error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retrieving %s: status %d: %v", e.Locator, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("retrieving %s: %v", e.Locator, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
