package archive

import "errors"

var (
	// ErrEmptyHash indicates StoreFile was called without a content hash.
	ErrEmptyHash = errors.New("archive: content hash is empty")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("archive: required parameter is nil")

	// ErrInvalidNetworkKey indicates the node advertised an unusable network key.
	ErrInvalidNetworkKey = errors.New("archive: invalid network public key")
)
