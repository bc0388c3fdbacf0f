// Package sealing keeps address keys confidential on a public ledger.
//
// A client seals a 20-byte value to the coprocessor's network key and gets a
// handle plus a proof. The ledger asks the coprocessor to verify the proof,
// which stores the ciphertext and records who may read it. To read a value
// back the owner signs an EIP-712 authorization for a one-time keypair, and
// the decryption oracle re-encrypts the value to that keypair.
package sealing

import (
	"fmt"
	"io"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

// Input is a sealed value ready to be submitted with a ledger transaction.
type Input struct {
	Handle Handle `json:"handle"`
	Proof  []byte `json:"proof"`
}

// Sealer encrypts values to the coprocessor network key. It needs no secret
// and is safe for concurrent use as long as its random source is.
type Sealer struct {
	networkKey *ec.PublicKey
	rand       io.Reader
}

// NewSealer creates a Sealer for networkKey. Only WithRandom applies.
func NewSealer(networkKey *ec.PublicKey, opts ...Option) (*Sealer, error) {
	if networkKey == nil {
		return nil, fmt.Errorf("%w: network public key", ErrNilParam)
	}
	s := newSettings(opts)
	return &Sealer{networkKey: networkKey, rand: s.rand}, nil
}

// Seal encrypts value for use by contract on behalf of caller.
//
//	proof  = ephemeralPub(33B) || nonce(12B) || AES-256-GCM(value, aad = contract || caller) || tag(16B)
//	handle = Keccak256("phantom-handle" || proof || contract || caller)
func (s *Sealer) Seal(value, contract, caller addrcrypt.Address) (*Input, error) {
	proof, err := sealBox(s.rand, s.networkKey, infoSeal, value[:], inputAAD(contract, caller))
	if err != nil {
		return nil, err
	}
	return &Input{
		Handle: ComputeHandle(proof, contract, caller),
		Proof:  proof,
	}, nil
}

func inputAAD(contract, caller addrcrypt.Address) []byte {
	aad := make([]byte, 0, 2*addrcrypt.AddressLen)
	aad = append(aad, contract[:]...)
	return append(aad, caller[:]...)
}
