package ledger

import (
	"fmt"
	"sync"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

// Backend stores the per-user append-only record logs.
type Backend interface {
	// Append adds r to the end of user's log and returns its index.
	// Concurrent appends for one user must yield dense, distinct indices.
	Append(user addrcrypt.Address, r *Record) (uint64, error)

	// Count returns the number of records in user's log.
	Count(user addrcrypt.Address) (uint64, error)

	// Get returns record index of user's log, or ErrIndexOutOfRange.
	Get(user addrcrypt.Address, index uint64) (*Record, error)
}

// MemBackend keeps record logs in memory.
type MemBackend struct {
	mu   sync.RWMutex
	logs map[addrcrypt.Address][]Record
}

// Compile-time interface check.
var _ Backend = (*MemBackend)(nil)

// NewMemBackend creates an empty MemBackend.
func NewMemBackend() *MemBackend {
	return &MemBackend{logs: make(map[addrcrypt.Address][]Record)}
}

// Append implements Backend.
func (m *MemBackend) Append(user addrcrypt.Address, r *Record) (uint64, error) {
	if r == nil {
		return 0, fmt.Errorf("%w: record", ErrNilParam)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	index := uint64(len(m.logs[user]))
	m.logs[user] = append(m.logs[user], *r)
	return index, nil
}

// Count implements Backend.
func (m *MemBackend) Count(user addrcrypt.Address) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.logs[user])), nil
}

// Get implements Backend.
func (m *MemBackend) Get(user addrcrypt.Address, index uint64) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.logs[user]
	if index >= uint64(len(log)) {
		return nil, fmt.Errorf("%w: index %d, count %d", ErrIndexOutOfRange, index, len(log))
	}
	r := log[index]
	return &r, nil
}
