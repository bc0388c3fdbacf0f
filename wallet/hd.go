package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

const (
	// BIP44 path constants.
	PurposeBIP44     = 44
	CoinTypeEthereum = 60
	DefaultAccount   = 0
	ExternalChain    = 0

	// NetworkAccount holds the coprocessor network key of a node operator.
	NetworkAccount = 1

	// MaxAccountIndex is the largest non-hardened BIP32 index.
	MaxAccountIndex = 1<<31 - 1

	// BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet is an HD wallet that derives record-owner accounts.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// Account is a derived secp256k1 key pair and its 20-byte address.
// The private key never leaves the Account; callers sign through Sign.
type Account struct {
	Path string `json:"path"`

	priv    *ec.PrivateKey
	pub     *ec.PublicKey
	address addrcrypt.Address
}

// NewWallet creates a new Wallet from a BIP39 seed. A nil network selects MainNet.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	// The version bytes only affect xprv serialization, which is never exposed.
	masterKey, err := bip32.NewMaster(seed, &chaincfg.MainNet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &Wallet{
		masterKey: masterKey,
		network:   network,
	}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveAccount derives the account at m/44'/60'/0'/0/index.
func (w *Wallet) DeriveAccount(index uint32) (*Account, error) {
	return w.derive(DefaultAccount, index)
}

// DeriveNetworkKey derives the coprocessor network key at m/44'/60'/1'/0/0.
func (w *Wallet) DeriveNetworkKey() (*Account, error) {
	return w.derive(NetworkAccount, 0)
}

func (w *Wallet) derive(account, index uint32) (*Account, error) {
	if index > MaxAccountIndex {
		return nil, ErrAccountIndexOutOfRange
	}

	steps := []struct {
		name  string
		index uint32
	}{
		{"purpose", PurposeBIP44 + Hardened},
		{"coin type", CoinTypeEthereum + Hardened},
		{"account", account + Hardened},
		{"chain", ExternalChain},
		{"index", index},
	}

	current := w.masterKey
	for _, step := range steps {
		next, err := current.Child(step.index)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, step.name, err)
		}
		current = next
	}

	priv, err := current.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	path := fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", PurposeBIP44, CoinTypeEthereum, account, ExternalChain, index)
	return NewAccount(priv, path)
}

// NewAccount wraps an existing private key. path is informational.
func NewAccount(priv *ec.PrivateKey, path string) (*Account, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: private key is nil", ErrDerivationFailed)
	}
	pub := priv.PubKey()
	if pub == nil {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrDerivationFailed)
	}

	return &Account{
		Path:    path,
		priv:    priv,
		pub:     pub,
		address: AddressFromPublicKey(pub),
	}, nil
}

// Address returns the account address.
func (a *Account) Address() addrcrypt.Address {
	return a.address
}

// PublicKey returns the account public key.
func (a *Account) PublicKey() *ec.PublicKey {
	return a.pub
}

// Sign signs a 32-byte digest and returns the DER-encoded ECDSA signature.
func (a *Account) Sign(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("wallet: digest must be 32 bytes, got %d", len(digest))
	}
	sig, err := a.priv.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("wallet: sign: %w", err)
	}
	return sig.Serialize(), nil
}

// PrivateKey exposes the underlying key for components that perform ECDH.
func (a *Account) PrivateKey() *ec.PrivateKey {
	return a.priv
}
