package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

var (
	bucketRecords = []byte("records")
	bucketCounts  = []byte("counts")
)

// BoltBackend persists record logs in a bbolt database.
//
// Buckets:
//
//	records: user(20) || index(8, big-endian) -> gob(Record)
//	counts:  user(20) -> count(8, big-endian)
type BoltBackend struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Backend = (*BoltBackend)(nil)

// OpenBoltBackend opens or creates the ledger database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltBackend(dbPath string) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketCounts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

// Close closes the underlying database.
func (b *BoltBackend) Close() error { return b.db.Close() }

// Append implements Backend. The count update and the record write share one
// transaction, so indices stay dense across processes.
func (b *BoltBackend) Append(user addrcrypt.Address, r *Record) (uint64, error) {
	if r == nil {
		return 0, fmt.Errorf("%w: record", ErrNilParam)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return 0, fmt.Errorf("ledger: encode record: %w", err)
	}

	var index uint64
	err := b.db.Update(func(tx *bbolt.Tx) error {
		counts := tx.Bucket(bucketCounts)
		index = decodeCount(counts.Get(user[:]))

		if err := tx.Bucket(bucketRecords).Put(recordKey(user, index), buf.Bytes()); err != nil {
			return fmt.Errorf("ledger: put record: %w", err)
		}
		if err := counts.Put(user[:], encodeCount(index+1)); err != nil {
			return fmt.Errorf("ledger: put count: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// Count implements Backend.
func (b *BoltBackend) Count(user addrcrypt.Address) (uint64, error) {
	var n uint64
	err := b.db.View(func(tx *bbolt.Tx) error {
		n = decodeCount(tx.Bucket(bucketCounts).Get(user[:]))
		return nil
	})
	return n, err
}

// Get implements Backend.
func (b *BoltBackend) Get(user addrcrypt.Address, index uint64) (*Record, error) {
	var r Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get(recordKey(user, index))
		if data == nil {
			count := decodeCount(tx.Bucket(bucketCounts).Get(user[:]))
			return fmt.Errorf("%w: index %d, count %d", ErrIndexOutOfRange, index, count)
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// recordKey encodes user || index as a sortable key.
func recordKey(user addrcrypt.Address, index uint64) []byte {
	k := make([]byte, addrcrypt.AddressLen+8)
	copy(k, user[:])
	binary.BigEndian.PutUint64(k[addrcrypt.AddressLen:], index)
	return k
}

func encodeCount(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func decodeCount(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
