package wallet

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

// curveOrder is the order N of the secp256k1 group.
var curveOrder, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// maxScalarAttempts bounds the rejection loop in NewPrivateKey. The chance a
// uniform 32-byte value is out of range is about 2^-128.
const maxScalarAttempts = 16

// AddressFromPublicKey returns Keccak256(X || Y)[12:] for the uncompressed point.
func AddressFromPublicKey(pub *ec.PublicKey) addrcrypt.Address {
	var point [64]byte
	pub.X.FillBytes(point[:32])
	pub.Y.FillBytes(point[32:])

	var a addrcrypt.Address
	copy(a[:], addrcrypt.Keccak256(point[:])[12:])
	return a
}

// NewAddressKey generates a throwaway keypair and returns its address. The
// address is used as the encryption key of one record and is sealed before it
// is stored; the private key is discarded. r may be nil for crypto/rand.
func NewAddressKey(r io.Reader) (addrcrypt.Address, error) {
	priv, err := NewPrivateKey(r)
	if err != nil {
		return addrcrypt.Address{}, err
	}
	return AddressFromPublicKey(priv.PubKey()), nil
}

// NewPrivateKey draws a secp256k1 private key from r, rejecting scalars
// outside [1, N). r may be nil for crypto/rand.
func NewPrivateKey(r io.Reader) (*ec.PrivateKey, error) {
	if r == nil {
		r = rand.Reader
	}

	scalar := make([]byte, 32)
	defer clear(scalar)

	for range maxScalarAttempts {
		if _, err := io.ReadFull(r, scalar); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
		}

		d := new(big.Int).SetBytes(scalar)
		if d.Sign() == 0 || d.Cmp(curveOrder) >= 0 {
			continue
		}

		priv, _ := ec.PrivateKeyFromBytes(scalar)
		return priv, nil
	}
	return nil, fmt.Errorf("%w: no valid scalar after %d attempts", ErrRandomSource, maxScalarAttempts)
}
