package models

import "errors"

var (
	// ErrNotFound marks a missing input document.
	ErrNotFound = errors.New("file not found")

	// ErrMissingCredentials marks absent store credentials, detected
	// before any network call is made.
	ErrMissingCredentials = errors.New("store credentials missing")
)
