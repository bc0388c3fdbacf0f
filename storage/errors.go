package storage

import "errors"

var (
	// ErrNotFound indicates no content exists for the given CID.
	ErrNotFound = errors.New("storage: content not found")

	// ErrInvalidCID indicates a content identifier could not be parsed.
	ErrInvalidCID = errors.New("storage: invalid content identifier")

	// ErrCIDMismatch indicates fetched content does not hash to the requested CID.
	ErrCIDMismatch = errors.New("storage: content does not match CID")

	// ErrIOFailure indicates a file read/write error.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrEmptyContent indicates an attempt to store empty content.
	ErrEmptyContent = errors.New("storage: content is empty")

	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")
)
