package sealing

import (
	"context"
	"fmt"
	"io"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/wallet"
)

// Oracle re-encrypts sealed values for authorized users.
type Oracle interface {
	UserDecrypt(ctx context.Context, req *DecryptRequest) (*DecryptResponse, error)
}

// Signer is an account that can authorize decryption. *wallet.Account implements it.
type Signer interface {
	Address() addrcrypt.Address
	PublicKey() *ec.PublicKey
	Sign(digest []byte) ([]byte, error)
}

var _ Signer = (*wallet.Account)(nil)

// Keypair is a one-time key the oracle re-encrypts to.
type Keypair struct {
	priv *ec.PrivateKey
}

// GenerateKeypair draws a fresh keypair from r (nil for crypto/rand).
func GenerateKeypair(r io.Reader) (*Keypair, error) {
	priv, err := wallet.NewPrivateKey(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	return &Keypair{priv: priv}, nil
}

// PublicKey returns the compressed public key.
func (k *Keypair) PublicKey() []byte {
	return k.priv.PubKey().Compressed()
}

// Open decrypts a value the oracle re-encrypted for handle h.
func (k *Keypair) Open(h Handle, reencrypted []byte) (addrcrypt.Address, error) {
	value, err := openBox(k.priv, infoReencrypt, reencrypted, h[:], ErrDecryptionFailed)
	if err != nil {
		return addrcrypt.Address{}, err
	}
	defer clear(value)
	return addrcrypt.AddressFromBytes(value)
}

// Unsealer runs the user side of the decryption handshake.
type Unsealer struct {
	oracle Oracle
	domain Domain
	settings
}

// NewUnsealer creates an Unsealer that signs authorizations under domain.
func NewUnsealer(oracle Oracle, domain Domain, opts ...Option) (*Unsealer, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: oracle", ErrNilParam)
	}
	return &Unsealer{oracle: oracle, domain: domain, settings: newSettings(opts)}, nil
}

// Unseal recovers the value behind h, which contract holds on behalf of
// signer. Each call uses its own keypair and signature.
func (u *Unsealer) Unseal(ctx context.Context, h Handle, contract addrcrypt.Address, signer Signer) (addrcrypt.Address, error) {
	if signer == nil {
		return addrcrypt.Address{}, fmt.Errorf("%w: signer", ErrNilParam)
	}

	kp, err := GenerateKeypair(u.rand)
	if err != nil {
		return addrcrypt.Address{}, err
	}

	req, err := u.Authorize(h, contract, kp, signer)
	if err != nil {
		return addrcrypt.Address{}, err
	}

	resp, err := u.oracle.UserDecrypt(ctx, req)
	if err != nil {
		return addrcrypt.Address{}, err
	}
	return kp.Open(h, resp.Reencrypted)
}

// Authorize builds and signs the decrypt request for h using kp.
func (u *Unsealer) Authorize(h Handle, contract addrcrypt.Address, kp *Keypair, signer Signer) (*DecryptRequest, error) {
	auth := Authorization{
		PublicKey:         kp.PublicKey(),
		ContractAddresses: []addrcrypt.Address{contract},
		StartTimestamp:    uint64(u.now().Unix()),
		DurationDays:      u.durationDays,
	}

	sig, err := signer.Sign(auth.Digest(u.domain))
	if err != nil {
		return nil, fmt.Errorf("sealing: sign authorization: %w", err)
	}

	return &DecryptRequest{
		Handle:          h,
		Contract:        contract,
		User:            signer.Address(),
		Authorization:   auth,
		SignerPublicKey: signer.PublicKey().Compressed(),
		Signature:       sig,
	}, nil
}
