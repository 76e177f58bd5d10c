package msauth

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCacheDir is the default directory for the token cache, relative to
// the user's home directory.
const DefaultCacheDir = ".config/teamtime"

// cacheFileName is the single file holding the serialized credential blob.
const cacheFileName = "token_cache.json"

// CacheStore persists the serialized credential blob across process
// restarts. The blob is opaque to the store; only the Manager knows its
// shape.
//
// SECURITY: the cache directory is created with 0700 and the cache file with
// 0600 permissions. Protection beyond filesystem permissions is delegated to
// the host.
type CacheStore struct {
	path string
}

// NewCacheStore creates a cache store rooted at dir, creating the directory
// on demand. An empty dir selects ~/.config/teamtime.
func NewCacheStore(dir string) (*CacheStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultCacheDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &CacheStore{path: filepath.Join(dir, cacheFileName)}, nil
}

// Load returns the last persisted blob, or ErrCacheMiss when none exists.
// A missing cache is the normal first-run outcome and must not be treated as
// a failure by callers.
func (s *CacheStore) Load() ([]byte, error) {
	// #nosec G304 -- path is constructed from the configured cache dir, not user input
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}
	return data, nil
}

// Save persists the blob, replacing any previous state.
func (s *CacheStore) Save(blob []byte) error {
	if err := os.WriteFile(s.path, blob, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// Clear removes the persisted blob. A missing file counts as success.
func (s *CacheStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path returns the cache file location.
func (s *CacheStore) Path() string {
	return s.path
}
