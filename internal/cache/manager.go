// Package cache implements the content-addressed build cache described
// as an external collaborator: the interpreter never calls it, but the
// CLI's task runner may consult it before invoking a build-like task,
// and its key format is part of the core's documented external
// contract.
package cache

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	solodb "github.com/phillarmonic/SoloDB"
	"golang.org/x/crypto/blake2b"
)

// Entry mirrors the original engine's CacheEntry: the hash of a
// target's inputs, the hash of the command used to build it, the
// output paths it produced, and when it was stored.
type Entry struct {
	InputHash   string    `json:"input_hash"`
	CommandHash string    `json:"command_hash"`
	Outputs     []string  `json:"outputs"`
	Timestamp   time.Time `json:"timestamp"`
}

// Manager handles the on-disk cache store with SoloDB.
type Manager struct {
	db       *solodb.DB
	disabled bool
}

// Stats summarizes the cache database's current state.
type Stats struct {
	Keys        int
	FileBytes   int64
	LiveRecords int64
}

// NewManager opens (or creates) the cache database at ~/.iris/cache.solo.
// A disabled manager short-circuits every operation to a no-op miss,
// letting callers keep a uniform code path when caching is turned off.
func NewManager(disabled bool) (*Manager, error) {
	if disabled {
		return &Manager{disabled: true}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	irisDir := filepath.Join(homeDir, ".iris")
	if err := os.MkdirAll(irisDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .iris directory: %w", err)
	}

	dbPath := filepath.Join(irisDir, "cache.solo")
	db, err := solodb.Open(solodb.Options{
		Path:       dbPath,
		Durability: solodb.SyncBatch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &Manager{db: db}, nil
}

// GenerateKey hashes a target's identity: its name, sorted source
// list, sorted flag list and the compiler identity responsible for
// building it. Sorting sources and flags makes the key independent of
// declaration order, so flags/+= reordering upstream doesn't churn the
// cache.
func GenerateKey(targetName string, sources, flags []string, compilerIdentity string) string {
	sortedSources := append([]string(nil), sources...)
	sort.Strings(sortedSources)
	sortedFlags := append([]string(nil), flags...)
	sort.Strings(sortedFlags)

	h, _ := blake2b.New256(nil)
	fmt.Fprintln(h, targetName)
	for _, s := range sortedSources {
		fmt.Fprintln(h, s)
	}
	for _, f := range sortedFlags {
		fmt.Fprintln(h, f)
	}
	fmt.Fprintln(h, compilerIdentity)

	return "target:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// IsUpToDate reports whether the stored entry for key, if any, matches
// the given input and command hashes.
func (m *Manager) IsUpToDate(key, inputHash, commandHash string) (bool, error) {
	entry, found, err := m.get(key)
	if err != nil || !found {
		return false, err
	}
	return entry.InputHash == inputHash && entry.CommandHash == commandHash, nil
}

// Store records a fresh cache entry for key.
func (m *Manager) Store(key string, entry Entry) error {
	if m.disabled {
		return nil
	}
	entry.Timestamp = time.Now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache encode error: %w", err)
	}
	reader := bytes.NewReader(data)
	if err := m.db.SetBlob(key, reader, int64(len(data)), time.Time{}); err != nil {
		return fmt.Errorf("cache write error: %w", err)
	}
	return nil
}

// Get retrieves a stored entry, reporting a miss rather than an error
// when the key is absent or expired.
func (m *Manager) Get(key string) (Entry, bool, error) {
	return m.get(key)
}

func (m *Manager) get(key string) (Entry, bool, error) {
	if m.disabled {
		return Entry{}, false, nil
	}

	rc, _, _, err := m.db.GetBlob(key)
	if err == solodb.ErrNotFound || err == solodb.ErrExpired {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache read error: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache read error: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("cache decode error: %w", err)
	}
	return entry, true, nil
}

// Invalidate removes a single key from the cache.
func (m *Manager) Invalidate(key string) error {
	if m.disabled {
		return nil
	}
	return m.db.Delete(key)
}

// Clear compacts the database to reclaim space after a series of
// Invalidate calls; it does not remove live entries. The underlying
// store has no bulk-clear primitive, so callers that need a full wipe
// should remove ~/.iris/cache.solo directly.
func (m *Manager) Clear() error {
	if m.disabled || m.db == nil {
		return nil
	}
	return m.db.Compact()
}

// Stats reports current cache database statistics.
func (m *Manager) Stats() Stats {
	if m.disabled || m.db == nil {
		return Stats{}
	}
	dbStats := m.db.Stats()
	return Stats{
		Keys:        dbStats.Keys,
		FileBytes:   dbStats.FileBytes,
		LiveRecords: int64(dbStats.LiveRecords),
	}
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	if m.disabled || m.db == nil {
		return nil
	}
	return m.db.Close()
}
