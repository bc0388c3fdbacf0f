package addrcrypt

import "errors"

var (
	// ErrInvalidAddress indicates the address is not exactly 20 bytes of hex
	// (40 hex digits after an optional 0x prefix).
	ErrInvalidAddress = errors.New("addrcrypt: invalid address")

	// ErrMalformedPayload indicates the payload is missing the ':' delimiter,
	// has an empty part, or either part is not valid base64.
	ErrMalformedPayload = errors.New("addrcrypt: malformed payload")

	// ErrAuthenticationFailure indicates AES-GCM authentication failed: wrong
	// address key, corrupted ciphertext, or a nonce of the wrong size.
	ErrAuthenticationFailure = errors.New("addrcrypt: authentication failure")

	// ErrRandomSource indicates the random source could not produce a nonce.
	ErrRandomSource = errors.New("addrcrypt: random source failure")
)
