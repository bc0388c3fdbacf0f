// Package ledger implements the PhantomArchive record store: an append-only
// log of file records per user account. Appending a record verifies the
// sealed address key and grants the owner and the archive access to it.
package ledger

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/sealing"
)

// ContractName is mixed into the archive address derivation.
const ContractName = "PhantomArchive"

// Verifier checks sealed inputs and maintains their ACL. *sealing.Coprocessor implements it.
type Verifier interface {
	VerifyInput(ctx context.Context, in *sealing.Input, contract, caller addrcrypt.Address) error
	Allow(ctx context.Context, h sealing.Handle, account addrcrypt.Address) error
}

var _ Verifier = (*sealing.Coprocessor)(nil)

// Ledger is the read/write surface of an archive, local or remote.
type Ledger interface {
	ContractAddress(ctx context.Context) (addrcrypt.Address, error)
	AddFile(ctx context.Context, caller addrcrypt.Address, name, encryptedPayload string, in *sealing.Input) (uint64, error)
	FileCount(ctx context.Context, user addrcrypt.Address) (uint64, error)
	File(ctx context.Context, user addrcrypt.Address, index uint64) (*Record, error)
}

// ContractAddress derives the archive address deployed by deployer:
//
//	Keccak256(deployer || "PhantomArchive")[12:]
func ContractAddress(deployer addrcrypt.Address) addrcrypt.Address {
	var a addrcrypt.Address
	copy(a[:], addrcrypt.Keccak256(deployer[:], []byte(ContractName))[12:])
	return a
}

// Archive is the record store. It is safe for concurrent use; AddFile calls
// are serialized.
type Archive struct {
	address  addrcrypt.Address
	backend  Backend
	verifier Verifier
	now      func() time.Time
	log      *logrus.Logger

	mu sync.Mutex
}

var _ Ledger = (*Archive)(nil)

// Option configures an Archive.
type Option func(*Archive)

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Archive) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(l *logrus.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an Archive at address over backend.
func New(address addrcrypt.Address, backend Backend, verifier Verifier, opts ...Option) (*Archive, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend", ErrNilParam)
	}
	if verifier == nil {
		return nil, fmt.Errorf("%w: verifier", ErrNilParam)
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	a := &Archive{
		address:  address,
		backend:  backend,
		verifier: verifier,
		now:      time.Now,
		log:      discard,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Address returns the archive contract address.
func (a *Archive) Address() addrcrypt.Address {
	return a.address
}

// ContractAddress implements Ledger.
func (a *Archive) ContractAddress(ctx context.Context) (addrcrypt.Address, error) {
	if err := ctx.Err(); err != nil {
		return addrcrypt.Address{}, err
	}
	return a.address, nil
}

// AddFile verifies in for (archive, caller), grants caller and the archive
// access to its handle, and appends the record. It returns the record index.
// Nothing is appended if any step fails. A failed append leaves the grants on
// in.Handle in place; the handle is bound to caller and no record refers to it.
func (a *Archive) AddFile(ctx context.Context, caller addrcrypt.Address, name, encryptedPayload string, in *sealing.Input) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, ErrEmptyName
	}
	if encryptedPayload == "" {
		return 0, ErrEmptyPayload
	}
	if in == nil {
		return 0, fmt.Errorf("%w: sealed input", ErrNilParam)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.verifier.VerifyInput(ctx, in, a.address, caller); err != nil {
		return 0, err
	}
	for _, account := range []addrcrypt.Address{caller, a.address} {
		if err := a.verifier.Allow(ctx, in.Handle, account); err != nil {
			return 0, err
		}
	}

	index, err := a.backend.Append(caller, &Record{
		Name:             name,
		EncryptedPayload: encryptedPayload,
		SealedAddress:    in.Handle,
		CreatedAt:        uint64(a.now().Unix()),
	})
	if err != nil {
		return 0, err
	}

	a.log.WithFields(logrus.Fields{
		"user":  caller.Hex(),
		"index": index,
		"name":  name,
	}).Info("file added")
	return index, nil
}

// FileCount returns the number of records user has stored.
func (a *Archive) FileCount(ctx context.Context, user addrcrypt.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return a.backend.Count(user)
}

// File returns record index of user, or ErrIndexOutOfRange.
func (a *Archive) File(ctx context.Context, user addrcrypt.Address, index uint64) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.backend.Get(user, index)
}
