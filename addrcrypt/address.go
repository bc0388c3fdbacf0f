package addrcrypt

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// AddressLen is the length of an account address in bytes.
	AddressLen = 20

	// AddressHexLen is the number of hex digits in an address without prefix.
	AddressHexLen = 2 * AddressLen
)

// Address is a 20-byte account address. It is used both for real accounts
// (record owners, the archive contract) and for random address keys.
type Address [AddressLen]byte

// ParseAddress parses a case-insensitive hex address with an optional 0x prefix.
// Exactly 40 hex digits are required; anything else returns ErrInvalidAddress.
func ParseAddress(s string) (Address, error) {
	var a Address

	normalized := strings.ToLower(s)
	normalized = strings.TrimPrefix(normalized, "0x")
	if len(normalized) != AddressHexLen {
		return a, fmt.Errorf("%w: expected %d hex digits, got %d", ErrInvalidAddress, AddressHexLen, len(normalized))
	}

	if _, err := hex.Decode(a[:], []byte(normalized)); err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
// Only use it with constant input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies a 20-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLen)
	copy(b, a[:])
	return b
}

// IsZero reports whether every byte of the address is zero.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Hex returns the lowercase 0x-prefixed hex encoding.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the EIP-55 mixed-case checksum encoding.
func (a Address) String() string {
	lower := hex.EncodeToString(a[:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, 2+AddressHexLen)
	out[0], out[1] = '0', 'x'
	for i := 0; i < AddressHexLen; i++ {
		c := lower[i]
		// High nibble for even positions, low nibble for odd.
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out[2+i] = c
	}
	return string(out)
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
