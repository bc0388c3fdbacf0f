// Package storage keeps file content addressed by CIDv1, so the hash that is
// encrypted into an archive record can be resolved back to the bytes.
package storage

import (
	"fmt"

	cid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// Store provides content-addressed storage.
type Store interface {
	// Put stores data and returns its CID.
	Put(data []byte) (cid.Cid, error)

	// Get retrieves content by CID.
	Get(c cid.Cid) ([]byte, error)

	// Has checks if content exists for c.
	Has(c cid.Cid) (bool, error)

	// Delete removes content by CID.
	Delete(c cid.Cid) error

	// Size returns the size in bytes of the content for c.
	Size(c cid.Cid) (int64, error)

	// List returns all stored CIDs.
	List() ([]cid.Cid, error)
}

// ContentID returns the CIDv1 (raw codec, sha2-256) of data.
func ContentID(data []byte) (cid.Cid, error) {
	digest, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("storage: hash content: %w", err)
	}
	return cid.NewCidV1(cid.Raw, digest), nil
}

// ParseContentID decodes a CID string such as "bafkrei...".
func ParseContentID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %w", ErrInvalidCID, err)
	}
	return c, nil
}

// Verify checks that data hashes to c under c's own prefix.
func Verify(c cid.Cid, data []byte) error {
	got, err := c.Prefix().Sum(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCID, err)
	}
	if !got.Equals(c) {
		return fmt.Errorf("%w: %s", ErrCIDMismatch, c)
	}
	return nil
}
