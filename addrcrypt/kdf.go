// Package addrcrypt implements the address-keyed encryption used by Phantom Archive.
//
// Key derivation formula:
//
//	aes_key = SHA256(address_bytes)
//
// where address_bytes is the raw 20-byte address key. There is no salt and no
// secret: whoever learns the address key can decrypt the payload. Access control
// lives in the sealing layer, which keeps the address key confidential on the
// ledger. Adding a salt here would break every payload already written.
//
// Payload format:
//
//	base64(nonce[12]) ":" base64(AES-256-GCM(plaintext) || tag[16])
package addrcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
)

const (
	// KeyLen is the length of the derived AES-256 key in bytes.
	KeyLen = sha256.Size

	// NonceLen is the length of the AES-GCM nonce in bytes.
	NonceLen = 12

	// TagLen is the length of the GCM authentication tag in bytes.
	TagLen = 16
)

// Key is an opaque AES-GCM key derived from an address. The raw key bytes are
// never exposed; a Key can only be used to seal and open payloads.
type Key struct {
	aead cipher.AEAD
}

// DeriveKey parses address and derives its AES-GCM key.
// Returns ErrInvalidAddress if address is not 40 hex digits.
func DeriveKey(address string) (*Key, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return DeriveKeyFromAddress(addr)
}

// DeriveKeyFromAddress derives the AES-GCM key for addr.
// The derivation is deterministic: the same address always yields a key that
// opens payloads sealed by any other Key derived from it.
func DeriveKeyFromAddress(addr Address) (*Key, error) {
	digest := sha256.Sum256(addr[:])
	defer clear(digest[:])

	block, err := aes.NewCipher(digest[:])
	if err != nil {
		return nil, fmt.Errorf("addrcrypt: AES cipher creation failed: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("addrcrypt: GCM creation failed: %w", err)
	}

	return &Key{aead: aead}, nil
}

// String never reveals key material.
func (k *Key) String() string {
	return "addrcrypt.Key(AES-256-GCM)"
}

// seal encrypts plaintext under nonce. Returns ciphertext || tag.
func (k *Key) seal(nonce, plaintext []byte) []byte {
	return k.aead.Seal(nil, nonce, plaintext, nil)
}

// open authenticates and decrypts ciphertext || tag.
func (k *Key) open(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != k.aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrAuthenticationFailure, k.aead.NonceSize(), len(nonce))
	}
	if len(ciphertext) < k.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrAuthenticationFailure)
	}

	plaintext, err := k.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return plaintext, nil
}
