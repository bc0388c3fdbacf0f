package ledger

import "errors"

var (
	// ErrIndexOutOfRange indicates the requested record index is >= the user's file count.
	ErrIndexOutOfRange = errors.New("ledger: index out of range")

	// ErrEmptyName indicates a file record was submitted without a name.
	ErrEmptyName = errors.New("ledger: file name is empty")

	// ErrEmptyPayload indicates a file record was submitted without an encrypted payload.
	ErrEmptyPayload = errors.New("ledger: encrypted payload is empty")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrCorruptRecord indicates a stored record could not be decoded.
	ErrCorruptRecord = errors.New("ledger: corrupt record")
)
