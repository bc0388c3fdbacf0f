package sealing

import "errors"

var (
	// ErrInvalidProof indicates the input proof is malformed or does not
	// authenticate under the network key.
	ErrInvalidProof = errors.New("sealing: invalid input proof")

	// ErrHandleMismatch indicates the handle is not bound to the proof, contract and caller.
	ErrHandleMismatch = errors.New("sealing: handle does not match proof")

	// ErrHandleNotFound indicates no ciphertext is stored under the handle.
	ErrHandleNotFound = errors.New("sealing: handle not found")

	// ErrUnauthorized indicates the user or contract is not on the handle's ACL,
	// or the contract is not listed in the authorization.
	ErrUnauthorized = errors.New("sealing: not authorized for handle")

	// ErrExpiredAuthorization indicates the authorization window is not open at
	// the oracle's current time, or its duration is out of range.
	ErrExpiredAuthorization = errors.New("sealing: authorization expired or not yet valid")

	// ErrInvalidSignature indicates the authorization signature or signer key is invalid.
	ErrInvalidSignature = errors.New("sealing: invalid authorization signature")

	// ErrInvalidPublicKey indicates a public key could not be parsed.
	ErrInvalidPublicKey = errors.New("sealing: invalid public key")

	// ErrInvalidHandle indicates a handle string is not 32 bytes of hex.
	ErrInvalidHandle = errors.New("sealing: invalid handle")

	// ErrDecryptionFailed indicates the re-encrypted response could not be opened.
	ErrDecryptionFailed = errors.New("sealing: reencrypted value could not be opened")

	// ErrRandomSource indicates the random source failed.
	ErrRandomSource = errors.New("sealing: random source failure")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("sealing: required parameter is nil")
)
