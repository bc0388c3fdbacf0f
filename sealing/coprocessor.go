package sealing

import (
	"context"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/sirupsen/logrus"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/wallet"
)

// DecryptRequest asks the oracle to re-encrypt the value behind Handle to
// Authorization.PublicKey.
type DecryptRequest struct {
	Handle          Handle            `json:"handle"`
	Contract        addrcrypt.Address `json:"contract"`
	User            addrcrypt.Address `json:"user"`
	Authorization   Authorization     `json:"authorization"`
	SignerPublicKey []byte            `json:"signer_public_key"`
	Signature       []byte            `json:"signature"`
}

// DecryptResponse carries the value re-encrypted to the requester's keypair.
type DecryptResponse struct {
	Reencrypted []byte `json:"reencrypted"`
}

// NetworkInfo is what a client needs to seal values and build authorizations.
type NetworkInfo struct {
	PublicKey []byte `json:"public_key"`
	Domain    Domain `json:"domain"`
}

// Coprocessor holds the network private key. It verifies sealed inputs for
// the ledger, keeps the ACL, and acts as the decryption oracle.
type Coprocessor struct {
	key    *ec.PrivateKey
	store  Store
	domain Domain
	settings
}

// NewCoprocessor creates a coprocessor for chainID. The verifying contract of
// its EIP-712 domain is the address of the network key.
func NewCoprocessor(key *ec.PrivateKey, store Store, chainID uint64, opts ...Option) (*Coprocessor, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: network private key", ErrNilParam)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	}
	return &Coprocessor{
		key:      key,
		store:    store,
		domain:   NewDomain(chainID, wallet.AddressFromPublicKey(key.PubKey())),
		settings: newSettings(opts),
	}, nil
}

// NetworkPublicKey returns the key clients seal to.
func (c *Coprocessor) NetworkPublicKey() *ec.PublicKey {
	return c.key.PubKey()
}

// Domain returns the EIP-712 domain authorizations must be signed under.
func (c *Coprocessor) Domain() Domain {
	return c.domain
}

// NetworkInfo returns the public parameters of this coprocessor.
func (c *Coprocessor) NetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &NetworkInfo{PublicKey: c.key.PubKey().Compressed(), Domain: c.domain}, nil
}

// VerifyInput checks that in was sealed for contract and caller, then stores
// its ciphertext under the handle.
func (c *Coprocessor) VerifyInput(ctx context.Context, in *Input, contract, caller addrcrypt.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if in == nil {
		return fmt.Errorf("%w: input", ErrNilParam)
	}

	if ComputeHandle(in.Proof, contract, caller) != in.Handle {
		return ErrHandleMismatch
	}

	value, err := openBox(c.key, infoSeal, in.Proof, inputAAD(contract, caller), ErrInvalidProof)
	if err != nil {
		return err
	}
	defer clear(value)
	if len(value) != addrcrypt.AddressLen {
		return fmt.Errorf("%w: sealed value is %d bytes", ErrInvalidProof, len(value))
	}

	if err := c.store.PutEntry(in.Handle, &Entry{Contract: contract, Caller: caller, Proof: in.Proof}); err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"handle":   in.Handle.String(),
		"contract": contract.Hex(),
		"caller":   caller.Hex(),
	}).Debug("sealed input verified")
	return nil
}

// Allow grants account access to the value behind h.
func (c *Coprocessor) Allow(ctx context.Context, h Handle, account addrcrypt.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.Allow(h, account)
}

// IsAllowed reports whether account may read the value behind h.
func (c *Coprocessor) IsAllowed(ctx context.Context, h Handle, account addrcrypt.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.store.IsAllowed(h, account)
}

// UserDecrypt validates req and returns the value re-encrypted to the
// requester's public key. Checks run in this order: authorization window,
// signature, signer address, contract listing, handle binding, ACL.
func (c *Coprocessor) UserDecrypt(ctx context.Context, req *DecryptRequest) (*DecryptResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: request", ErrNilParam)
	}

	fields := logrus.Fields{"handle": req.Handle.String(), "user": req.User.Hex()}
	resp, err := c.userDecrypt(req)
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("user decrypt denied")
		return nil, err
	}
	c.log.WithFields(fields).Debug("user decrypt served")
	return resp, nil
}

func (c *Coprocessor) userDecrypt(req *DecryptRequest) (*DecryptResponse, error) {
	auth := &req.Authorization
	if !auth.ValidAt(c.now().Unix()) {
		return nil, ErrExpiredAuthorization
	}

	if err := verifyAuthorization(c.domain, req); err != nil {
		return nil, err
	}

	if !auth.lists(req.Contract) {
		return nil, fmt.Errorf("%w: contract %s not listed", ErrUnauthorized, req.Contract.Hex())
	}

	entry, err := c.store.GetEntry(req.Handle)
	if err != nil {
		return nil, err
	}
	if entry.Contract != req.Contract {
		return nil, fmt.Errorf("%w: handle belongs to another contract", ErrUnauthorized)
	}

	for _, account := range []addrcrypt.Address{req.User, req.Contract} {
		ok, err := c.store.IsAllowed(req.Handle, account)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, account.Hex())
		}
	}

	value, err := openBox(c.key, infoSeal, entry.Proof, inputAAD(entry.Contract, entry.Caller), ErrInvalidProof)
	if err != nil {
		return nil, err
	}
	defer clear(value)

	recipient, err := ParsePublicKey(auth.PublicKey)
	if err != nil {
		return nil, err
	}
	box, err := sealBox(c.rand, recipient, infoReencrypt, value, req.Handle[:])
	if err != nil {
		return nil, err
	}
	return &DecryptResponse{Reencrypted: box}, nil
}

// verifyAuthorization checks the DER signature over the EIP-712 digest and
// that the signing key belongs to req.User.
func verifyAuthorization(d Domain, req *DecryptRequest) error {
	signer, err := ec.PublicKeyFromBytes(req.SignerPublicKey)
	if err != nil {
		return fmt.Errorf("%w: signer key: %w", ErrInvalidSignature, err)
	}
	if wallet.AddressFromPublicKey(signer) != req.User {
		return fmt.Errorf("%w: signer is not %s", ErrInvalidSignature, req.User.Hex())
	}

	sig, err := ec.ParseDERSignature(req.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !sig.Verify(req.Authorization.Digest(d), signer) {
		return ErrInvalidSignature
	}
	return nil
}
