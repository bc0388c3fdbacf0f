package sealing

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

// HandleLen is the size of a sealed value handle in bytes.
const HandleLen = 32

// handleDomain separates handle hashing from other Keccak uses.
var handleDomain = []byte("phantom-handle")

// Handle is the opaque reference to a sealed value that is stored on the ledger.
type Handle [HandleLen]byte

// ComputeHandle binds a proof to the contract and caller it was sealed for:
//
//	Keccak256("phantom-handle" || proof || contract || caller)
func ComputeHandle(proof []byte, contract, caller addrcrypt.Address) Handle {
	var h Handle
	copy(h[:], addrcrypt.Keccak256(handleDomain, proof, contract[:], caller[:]))
	return h
}

// ParseHandle parses a 0x-prefixed or bare hex handle.
func ParseHandle(s string) (Handle, error) {
	var h Handle
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 2*HandleLen {
		return h, fmt.Errorf("%w: expected %d hex digits, got %d", ErrInvalidHandle, 2*HandleLen, len(raw))
	}
	if _, err := hex.Decode(h[:], []byte(raw)); err != nil {
		return Handle{}, fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	return h, nil
}

// String returns the 0x-prefixed lowercase hex encoding.
func (h Handle) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether the handle is all zeros.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
