package sealing

import (
	"sync"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

// Entry is a verified sealed value as the coprocessor keeps it.
type Entry struct {
	Contract addrcrypt.Address
	Caller   addrcrypt.Address
	Proof    []byte
}

// Store persists verified ciphertexts and the per-handle access control list.
type Store interface {
	// PutEntry stores e under h. Storing the same handle twice overwrites it;
	// the handle commits to the proof so the content is identical.
	PutEntry(h Handle, e *Entry) error

	// GetEntry returns the entry for h or ErrHandleNotFound.
	GetEntry(h Handle) (*Entry, error)

	// Allow adds account to the ACL of h.
	Allow(h Handle, account addrcrypt.Address) error

	// IsAllowed reports whether account is on the ACL of h.
	IsAllowed(h Handle, account addrcrypt.Address) (bool, error)
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu      sync.RWMutex
	entries map[Handle]*Entry
	acl     map[Handle]map[addrcrypt.Address]struct{}
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[Handle]*Entry),
		acl:     make(map[Handle]map[addrcrypt.Address]struct{}),
	}
}

// PutEntry implements Store.
func (s *MemStore) PutEntry(h Handle, e *Entry) error {
	if e == nil {
		return ErrNilParam
	}
	cp := &Entry{Contract: e.Contract, Caller: e.Caller, Proof: append([]byte(nil), e.Proof...)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[h] = cp
	return nil
}

// GetEntry implements Store.
func (s *MemStore) GetEntry(h Handle) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[h]
	if !ok {
		return nil, ErrHandleNotFound
	}
	return &Entry{Contract: e.Contract, Caller: e.Caller, Proof: append([]byte(nil), e.Proof...)}, nil
}

// Allow implements Store.
func (s *MemStore) Allow(h Handle, account addrcrypt.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[h]; !ok {
		return ErrHandleNotFound
	}
	set, ok := s.acl[h]
	if !ok {
		set = make(map[addrcrypt.Address]struct{})
		s.acl[h] = set
	}
	set[account] = struct{}{}
	return nil
}

// IsAllowed implements Store.
func (s *MemStore) IsAllowed(h Handle, account addrcrypt.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.acl[h][account]
	return ok, nil
}
