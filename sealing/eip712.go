package sealing

import (
	"encoding/binary"
	"slices"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

const (
	// DomainName and DomainVersion identify the decryption authorization domain.
	DomainName    = "Decryption"
	DomainVersion = "1"

	// MaxDurationDays bounds the lifetime of a decryption authorization.
	MaxDurationDays = 365

	// DefaultDurationDays is used when the caller does not ask for a window.
	DefaultDurationDays = 10

	secondsPerDay = 86400
)

var (
	domainTypeHash = addrcrypt.Keccak256([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

	authorizationTypeHash = addrcrypt.Keccak256([]byte(
		"UserDecryptRequestVerification(bytes publicKey,address[] contractAddresses,uint256 startTimestamp,uint256 durationDays)"))
)

// Domain is the EIP-712 domain that scopes decryption authorizations to one
// chain and one oracle.
type Domain struct {
	Name              string            `json:"name"`
	Version           string            `json:"version"`
	ChainID           uint64            `json:"chain_id"`
	VerifyingContract addrcrypt.Address `json:"verifying_contract"`
}

// NewDomain returns the decryption domain for chainID and oracle address.
func NewDomain(chainID uint64, verifyingContract addrcrypt.Address) Domain {
	return Domain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Separator returns the EIP-712 domain separator.
func (d Domain) Separator() []byte {
	return addrcrypt.Keccak256(
		domainTypeHash,
		addrcrypt.Keccak256([]byte(d.Name)),
		addrcrypt.Keccak256([]byte(d.Version)),
		uint256(d.ChainID),
		word(d.VerifyingContract[:]),
	)
}

// Authorization is the message a user signs to let the oracle re-encrypt
// values of the listed contracts to PublicKey.
type Authorization struct {
	PublicKey         []byte              `json:"public_key"`
	ContractAddresses []addrcrypt.Address `json:"contract_addresses"`
	StartTimestamp    uint64              `json:"start_timestamp"`
	DurationDays      uint64              `json:"duration_days"`
}

// StructHash returns hashStruct(UserDecryptRequestVerification).
func (a *Authorization) StructHash() []byte {
	encoded := make([]byte, 0, 32*len(a.ContractAddresses))
	for _, c := range a.ContractAddresses {
		encoded = append(encoded, word(c[:])...)
	}

	return addrcrypt.Keccak256(
		authorizationTypeHash,
		addrcrypt.Keccak256(a.PublicKey),
		addrcrypt.Keccak256(encoded),
		uint256(a.StartTimestamp),
		uint256(a.DurationDays),
	)
}

// Digest returns keccak256(0x19 0x01 || domainSeparator || structHash), the
// value the user's account signs.
func (a *Authorization) Digest(d Domain) []byte {
	return addrcrypt.Keccak256([]byte{0x19, 0x01}, d.Separator(), a.StructHash())
}

// ValidAt reports whether unix time now falls in [start, start+days*86400)
// and the duration is within [1, MaxDurationDays].
func (a *Authorization) ValidAt(now int64) bool {
	if a.DurationDays < 1 || a.DurationDays > MaxDurationDays {
		return false
	}
	if now < 0 {
		return false
	}
	t := uint64(now)
	return a.StartTimestamp <= t && t < a.StartTimestamp+a.DurationDays*secondsPerDay
}

// lists reports whether contract is among the authorized contracts.
func (a *Authorization) lists(contract addrcrypt.Address) bool {
	return slices.Contains(a.ContractAddresses, contract)
}

// uint256 encodes v as a 32-byte big-endian word.
func uint256(v uint64) []byte {
	w := make([]byte, 32)
	binary.BigEndian.PutUint64(w[24:], v)
	return w
}

// word left-pads b to 32 bytes.
func word(b []byte) []byte {
	w := make([]byte, 32)
	copy(w[32-len(b):], b)
	return w
}
