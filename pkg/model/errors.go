package model

import (
	"errors"
)

var (
	// ErrNotFound indicates the source has no episode at the requested index
	ErrNotFound = errors.New("episode not found")
	// ErrMalformedFeed indicates a feed document could not be parsed
	ErrMalformedFeed = errors.New("malformed feed document")
)
