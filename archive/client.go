// Package archive implements the user flows of Phantom Archive on top of a
// ledger and a decryption oracle: storing a file reference under a fresh
// address key, listing records, and recovering the hashes.
//
// Storing:
//
//	key     <- random 20-byte address
//	payload <- addrcrypt.Encrypt(key, hash)
//	input   <- sealing.Seal(key, contract, owner)
//	index   <- ledger.AddFile(owner, name, payload, input)
//
// Reading reverses it: File, Unseal the handle, then Decrypt the payload.
package archive

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/network"
	"github.com/phantomarchive/libphantom-go/sealing"
	"github.com/phantomarchive/libphantom-go/wallet"
)

// DefaultConcurrency bounds the decrypts DecryptAll runs at once.
const DefaultConcurrency = 4

// Stored is the outcome of StoreFile. AddressKey is the only copy of the key
// outside the sealing layer.
type Stored struct {
	Index      uint64            `json:"index"`
	AddressKey addrcrypt.Address `json:"address_key"`
	Payload    string            `json:"encrypted_payload"`
	Handle     sealing.Handle    `json:"sealed_address"`
}

// Entry is a record with its position in the owner's log.
type Entry struct {
	Index uint64 `json:"index"`
	ledger.Record
}

// Decrypted is one recovered record. Err is set instead of the key and hash
// when that record could not be recovered.
type Decrypted struct {
	Index      uint64
	Name       string
	CreatedAt  time.Time
	AddressKey addrcrypt.Address
	Hash       string
	Err        error
}

// Client runs the archive flows as one owner account.
type Client struct {
	ledger      ledger.Ledger
	oracle      network.Oracle
	owner       sealing.Signer
	rand        io.Reader
	now         func() time.Time
	log         *logrus.Logger
	concurrency int

	mu   sync.Mutex
	info *sealing.NetworkInfo
}

// Option configures a Client.
type Option func(*Client)

// WithRandom sets the source of address keys, nonces and ephemeral keys.
func WithRandom(r io.Reader) Option {
	return func(c *Client) {
		if r != nil {
			c.rand = r
		}
	}
}

// WithClock sets the time source for decryption authorizations.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithConcurrency sets how many records DecryptAll recovers in parallel.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a Client acting as owner.
func New(l ledger.Ledger, o network.Oracle, owner sealing.Signer, opts ...Option) (*Client, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: ledger", ErrNilParam)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: oracle", ErrNilParam)
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: owner", ErrNilParam)
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		ledger:      l,
		oracle:      o,
		owner:       owner,
		rand:        rand.Reader,
		now:         time.Now,
		log:         discard,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Owner returns the account the client acts as.
func (c *Client) Owner() addrcrypt.Address {
	return c.owner.Address()
}

// networkInfo fetches the oracle parameters once.
func (c *Client) networkInfo(ctx context.Context) (*sealing.NetworkInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info != nil {
		return c.info, nil
	}
	info, err := c.oracle.NetworkInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: network info: %w", err)
	}
	c.info = info
	return info, nil
}

// StoreFile encrypts hash under a fresh address key, seals the key for the
// archive and the owner, and appends the record.
func (c *Client) StoreFile(ctx context.Context, name, hash string) (*Stored, error) {
	if hash == "" {
		return nil, ErrEmptyHash
	}
	if name == "" {
		return nil, ledger.ErrEmptyName
	}

	info, err := c.networkInfo(ctx)
	if err != nil {
		return nil, err
	}
	networkKey, err := sealing.ParsePublicKey(info.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetworkKey, err)
	}
	contract, err := c.ledger.ContractAddress(ctx)
	if err != nil {
		return nil, err
	}

	addressKey, err := wallet.NewAddressKey(c.rand)
	if err != nil {
		return nil, err
	}
	key, err := addrcrypt.DeriveKeyFromAddress(addressKey)
	if err != nil {
		return nil, err
	}
	payload, err := addrcrypt.New(addrcrypt.WithRandom(c.rand)).EncryptWithKey(key, hash)
	if err != nil {
		return nil, err
	}

	sealer, err := sealing.NewSealer(networkKey, sealing.WithRandom(c.rand))
	if err != nil {
		return nil, err
	}
	in, err := sealer.Seal(addressKey, contract, c.owner.Address())
	if err != nil {
		return nil, err
	}

	index, err := c.ledger.AddFile(ctx, c.owner.Address(), name, payload, in)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{"user": c.owner.Address().Hex(), "index": index}).Debug("file stored")
	return &Stored{Index: index, AddressKey: addressKey, Payload: payload, Handle: in.Handle}, nil
}

// List returns every record of user in index order.
func (c *Client) List(ctx context.Context, user addrcrypt.Address) ([]Entry, error) {
	return List(ctx, c.ledger, user)
}

// List reads every record of user from l in index order. It needs no key.
func List(ctx context.Context, l ledger.Ledger, user addrcrypt.Address) ([]Entry, error) {
	count, err := l.FileCount(ctx, user)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, count)
	for i := range count {
		rec, err := l.File(ctx, user, i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Index: i, Record: *rec})
	}
	return entries, nil
}

// DecryptEntry recovers the address key and hash of the owner's record index.
func (c *Client) DecryptEntry(ctx context.Context, index uint64) (*Decrypted, error) {
	rec, err := c.ledger.File(ctx, c.owner.Address(), index)
	if err != nil {
		return nil, err
	}
	return c.decrypt(ctx, index, rec)
}

// DecryptAll recovers every record of the owner, each with its own
// authorization. Per-record failures are reported in Decrypted.Err; the
// returned error is set only when the records could not be listed or ctx
// was cancelled.
func (c *Client) DecryptAll(ctx context.Context) ([]Decrypted, error) {
	entries, err := c.List(ctx, c.owner.Address())
	if err != nil {
		return nil, err
	}

	results := make([]Decrypted, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := c.decrypt(gctx, e.Index, &e.Record)
			if err != nil {
				results[i] = Decrypted{Index: e.Index, Name: e.Name, CreatedAt: e.Time(), Err: err}
				return nil
			}
			results[i] = *d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) decrypt(ctx context.Context, index uint64, rec *ledger.Record) (*Decrypted, error) {
	info, err := c.networkInfo(ctx)
	if err != nil {
		return nil, err
	}
	contract, err := c.ledger.ContractAddress(ctx)
	if err != nil {
		return nil, err
	}

	unsealer, err := sealing.NewUnsealer(c.oracle, info.Domain,
		sealing.WithRandom(c.rand), sealing.WithClock(c.now), sealing.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	addressKey, err := unsealer.Unseal(ctx, rec.SealedAddress, contract, c.owner)
	if err != nil {
		return nil, fmt.Errorf("archive: unseal record %d: %w", index, err)
	}

	key, err := addrcrypt.DeriveKeyFromAddress(addressKey)
	if err != nil {
		return nil, err
	}
	hash, err := addrcrypt.New().DecryptWithKey(key, rec.EncryptedPayload)
	if err != nil {
		return nil, fmt.Errorf("archive: decrypt record %d: %w", index, err)
	}

	return &Decrypted{
		Index:      index,
		Name:       rec.Name,
		CreatedAt:  rec.Time(),
		AddressKey: addressKey,
		Hash:       hash,
	}, nil
}
