package sealing

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

var (
	bucketCiphertexts = []byte("ciphertexts")
	bucketACL         = []byte("acl")
)

// BoltStore is a Store backed by a bbolt database.
//
// Buckets:
//
//	ciphertexts: handle(32) -> gob(Entry)
//	acl:         handle(32) || account(20) -> 0x01
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the sealing database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("sealing: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("sealing: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCiphertexts, bucketACL} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sealing: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// PutEntry implements Store.
func (s *BoltStore) PutEntry(h Handle, e *Entry) error {
	if e == nil {
		return ErrNilParam
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return fmt.Errorf("sealing: encode entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketCiphertexts).Put(h[:], buf.Bytes()); err != nil {
			return fmt.Errorf("sealing: put entry: %w", err)
		}
		return nil
	})
}

// GetEntry implements Store.
func (s *BoltStore) GetEntry(h Handle) (*Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCiphertexts).Get(h[:])
		if data == nil {
			return ErrHandleNotFound
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
			return fmt.Errorf("sealing: decode entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Allow implements Store.
func (s *BoltStore) Allow(h Handle, account addrcrypt.Address) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketCiphertexts).Get(h[:]) == nil {
			return ErrHandleNotFound
		}
		if err := tx.Bucket(bucketACL).Put(aclKey(h, account), []byte{1}); err != nil {
			return fmt.Errorf("sealing: put acl: %w", err)
		}
		return nil
	})
}

// IsAllowed implements Store.
func (s *BoltStore) IsAllowed(h Handle, account addrcrypt.Address) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketACL).Get(aclKey(h, account)) != nil
		return nil
	})
	return ok, err
}

func aclKey(h Handle, account addrcrypt.Address) []byte {
	k := make([]byte, 0, HandleLen+addrcrypt.AddressLen)
	k = append(k, h[:]...)
	return append(k, account[:]...)
}
