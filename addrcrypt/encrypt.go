package addrcrypt

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Cipher encrypts and decrypts payloads under address-derived keys.
// A Cipher holds no per-call state and is safe for concurrent use as long as
// its random source is.
type Cipher struct {
	rand io.Reader
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithRandom sets the source of nonce randomness. Tests use a deterministic
// reader here; production code should keep the crypto/rand default.
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) {
		if r != nil {
			c.rand = r
		}
	}
}

// New creates a Cipher. Without options it reads nonces from crypto/rand.
func New(opts ...Option) *Cipher {
	c := &Cipher{rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultCipher backs the package-level Encrypt and Decrypt.
var defaultCipher = New()

// Encrypt encrypts plaintext under the key derived from address using the
// crypto/rand nonce source. See Cipher.Encrypt.
func Encrypt(address, plaintext string) (string, error) {
	return defaultCipher.Encrypt(address, plaintext)
}

// Decrypt decrypts payload under the key derived from address. See Cipher.Decrypt.
func Decrypt(address, payload string) (string, error) {
	return defaultCipher.Decrypt(address, payload)
}

// Encrypt derives the key for address, draws a fresh 12-byte nonce and returns
//
//	base64(nonce) ":" base64(AES-256-GCM(utf8(plaintext)) || tag)
//
// Two calls with the same inputs return different payloads.
func (c *Cipher) Encrypt(address, plaintext string) (string, error) {
	key, err := DeriveKey(address)
	if err != nil {
		return "", err
	}
	return c.EncryptWithKey(key, plaintext)
}

// EncryptWithKey is Encrypt with an already derived key.
func (c *Cipher) EncryptWithKey(key *Key, plaintext string) (string, error) {
	if key == nil {
		return "", fmt.Errorf("addrcrypt: key is nil")
	}

	nonce := make([]byte, NonceLen)
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomSource, err)
	}

	ciphertext := key.seal(nonce, encodeUTF8(plaintext))
	return Payload{Nonce: nonce, Ciphertext: ciphertext}.String(), nil
}

// Decrypt parses payload, derives the key for address and opens the ciphertext.
//
// Errors:
//   - ErrMalformedPayload: missing ':' delimiter, empty part, or invalid base64
//   - ErrInvalidAddress: address is not 40 hex digits
//   - ErrAuthenticationFailure: wrong key, tampered ciphertext, or bad nonce size
//
// Decrypt never returns partial plaintext.
func (c *Cipher) Decrypt(address, payload string) (string, error) {
	p, err := ParsePayload(payload)
	if err != nil {
		return "", err
	}

	key, err := DeriveKey(address)
	if err != nil {
		return "", err
	}
	return DecryptPayload(key, p)
}

// DecryptWithKey is Decrypt with an already derived key.
func (c *Cipher) DecryptWithKey(key *Key, payload string) (string, error) {
	p, err := ParsePayload(payload)
	if err != nil {
		return "", err
	}
	return DecryptPayload(key, p)
}

// DecryptPayload opens a parsed payload with key.
func DecryptPayload(key *Key, p *Payload) (string, error) {
	if key == nil {
		return "", fmt.Errorf("addrcrypt: key is nil")
	}
	if p == nil {
		return "", fmt.Errorf("%w: payload is nil", ErrMalformedPayload)
	}

	plaintext, err := key.open(p.Nonce, p.Ciphertext)
	if err != nil {
		return "", err
	}
	return decodeUTF8(plaintext), nil
}

// encodeUTF8 replaces invalid UTF-8 sequences with U+FFFD, as a WHATWG
// TextEncoder does for unpaired surrogates.
func encodeUTF8(s string) []byte {
	if utf8.ValidString(s) {
		return []byte(s)
	}
	return []byte(strings.ToValidUTF8(s, string(utf8.RuneError)))
}

// decodeUTF8 decodes bytes as UTF-8 with replacement, matching a WHATWG TextDecoder.
func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
