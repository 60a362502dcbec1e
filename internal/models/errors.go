// Package models defines the pipeline data shapes and typed errors.
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned when a page identifier is blank.
	ErrEmptySource = errors.New("empty page source")

	// ErrNotFound is returned when an exported product id does not exist.
	ErrNotFound = errors.New("product not found")
)

// PageReadError means the page markup could not be obtained at all.
type PageReadError struct {
	Source string
	Err    error
}

func (e *PageReadError) Error() string {
	return fmt.Sprintf("reading page %s: %v", e.Source, e.Err)
}

func (e *PageReadError) Unwrap() error { return e.Err }

// HTTPError represents a non-success HTTP status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s", e.StatusCode, e.URL)
}

// ContentExtractionError represents a failure in one extraction stage.
type ContentExtractionError struct {
	Step string
	Err  error
}

func (e *ContentExtractionError) Error() string {
	return fmt.Sprintf("content extraction failed at %s: %v", e.Step, e.Err)
}

func (e *ContentExtractionError) Unwrap() error { return e.Err }

// ImageFetchError represents a failed image header fetch or decode.
type ImageFetchError struct {
	URL string
	Err error
}

func (e *ImageFetchError) Error() string {
	return fmt.Sprintf("image %s: %v", e.URL, e.Err)
}

func (e *ImageFetchError) Unwrap() error { return e.Err }

// SchemaValidationError means the arbitration output did not match the product contract.
type SchemaValidationError struct {
	Err error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("arbitration result failed validation: %v", e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// ResolveError represents a transport or provider failure during arbitration.
type ResolveError struct {
	Provider string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("arbitration via %s failed: %v", e.Provider, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
