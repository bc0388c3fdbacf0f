package addrcrypt

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// PayloadSeparator separates the nonce and ciphertext parts of a payload.
const PayloadSeparator = ":"

// Payload is the parsed form of an encrypted payload string.
type Payload struct {
	// Nonce is the AES-GCM nonce. Well-formed payloads carry 12 bytes.
	Nonce []byte

	// Ciphertext is AES-GCM(plaintext) || tag(16B).
	Ciphertext []byte
}

// String encodes the payload as base64(nonce) ":" base64(ciphertext).
func (p Payload) String() string {
	return base64.StdEncoding.EncodeToString(p.Nonce) +
		PayloadSeparator +
		base64.StdEncoding.EncodeToString(p.Ciphertext)
}

// ParsePayload splits s on the first ':' and base64-decodes both parts.
// A missing delimiter, an empty part, or invalid base64 returns ErrMalformedPayload.
// The nonce length is not checked here; Decrypt reports a wrong-size nonce as
// ErrAuthenticationFailure.
//
// Both parts must be padded standard base64. Unpadded parts are rejected;
// encoders that always pad, such as btoa, produce payloads that decode here.
func ParsePayload(s string) (*Payload, error) {
	noncePart, dataPart, found := strings.Cut(s, PayloadSeparator)
	if !found {
		return nil, fmt.Errorf("%w: missing %q delimiter", ErrMalformedPayload, PayloadSeparator)
	}
	if noncePart == "" || dataPart == "" {
		return nil, fmt.Errorf("%w: empty nonce or ciphertext part", ErrMalformedPayload)
	}

	nonce, err := base64.StdEncoding.DecodeString(noncePart)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrMalformedPayload, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %w", ErrMalformedPayload, err)
	}

	return &Payload{Nonce: nonce, Ciphertext: ciphertext}, nil
}
