package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	cid "github.com/ipfs/go-cid"
)

// FileStore implements Store using the local filesystem.
// Files are stored at {baseDir}/{shard}/{cid}, where shard is the
// next-to-last two characters of the CID string.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a new file-based content store.
// baseDir is typically "~/.phantom/content". The directory is created if it does not exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return &FileStore{
		baseDir: baseDir,
	}, nil
}

// ContentPath converts a CID to its filesystem path.
func ContentPath(baseDir string, c cid.Cid) string {
	name := c.String()
	return filepath.Join(baseDir, shardOf(name), name)
}

func shardOf(name string) string {
	if len(name) < 3 {
		return "__"
	}
	return name[len(name)-3 : len(name)-1]
}

// Put stores data under its CID and returns the CID.
// Storing the same content twice is a no-op.
func (fs *FileStore) Put(data []byte) (cid.Cid, error) {
	if len(data) == 0 {
		return cid.Undef, ErrEmptyContent
	}

	c, err := ContentID(data)
	if err != nil {
		return cid.Undef, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := ContentPath(fs.baseDir, c)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return cid.Undef, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return cid.Undef, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return c, nil
}

// Get retrieves content by CID.
func (fs *FileStore) Get(c cid.Cid) ([]byte, error) {
	if !c.Defined() {
		return nil, ErrInvalidCID
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(ContentPath(fs.baseDir, c))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return data, nil
}

// Has checks if content exists for c.
func (fs *FileStore) Has(c cid.Cid) (bool, error) {
	if !c.Defined() {
		return false, ErrInvalidCID
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(ContentPath(fs.baseDir, c))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return true, nil
}

// Delete removes content by CID.
func (fs *FileStore) Delete(c cid.Cid) error {
	if !c.Defined() {
		return ErrInvalidCID
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(ContentPath(fs.baseDir, c)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Size returns the size in bytes of stored content for c.
func (fs *FileStore) Size(c cid.Cid) (int64, error) {
	if !c.Defined() {
		return 0, ErrInvalidCID
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	info, err := os.Stat(ContentPath(fs.baseDir, c))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return info.Size(), nil
}

// List returns all stored CIDs by scanning the shard directories.
// Files whose names do not decode as CIDs are skipped.
func (fs *FileStore) List() ([]cid.Cid, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	var result []cid.Cid
	for _, entry := range entries {
		if !entry.IsDir() || len(entry.Name()) != 2 {
			continue
		}

		files, err := os.ReadDir(filepath.Join(fs.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			c, err := cid.Decode(f.Name())
			if err != nil {
				continue
			}
			result = append(result, c)
		}
	}
	return result, nil
}
