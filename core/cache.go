package core

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	murmur "github.com/aviddiviner/go-murmur"
)

// cacheVersion is bumped whenever the entry layout changes; mismatched
// caches are discarded rather than migrated.
const cacheVersion = 1

const murmurSeed = 0x9747b28c

// CacheEntry is the summary kept per archive. Previews and descriptions are
// never cached; actions always re-read the archive itself.
type CacheEntry struct {
	Name       string    `json:"name"`
	Author     string    `json:"author,omitempty"`
	Type       ModType   `json:"type"`
	Version    string    `json:"version,omitempty"`
	Sorted     bool      `json:"sorted"`
	Size       int64     `json:"size"`
	Stamp      uint32    `json:"stamp"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

type cacheFile struct {
	Version int                   `json:"version"`
	Entries map[string]CacheEntry `json:"entries"`
}

// Cache stores scan summaries between runs, validated by a fingerprint of
// the archive's name, size and modification time. It only ever accelerates
// scan and search; mark, move and delete invalidate entries immediately.
type Cache struct {
	path    string
	entries map[string]CacheEntry
}

// CachePath returns the scan cache location for a source directory.
func CachePath(dir string) string {
	return filepath.Join(dir, ".modsorter-cache.json")
}

// LockPath returns the triage lock file location for a source directory.
func LockPath(dir string) string {
	return filepath.Join(dir, ".modsorter.lock")
}

// HistoryPath returns the action journal location for a source directory.
func HistoryPath(dir string) string {
	return filepath.Join(dir, ".modsorter-history.db")
}

// LoadCache reads the cache file at path. A missing, undecodable or
// version-mismatched file yields an empty cache, never an error.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: map[string]CacheEntry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read scan cache", "path", path, "error", err)
		}
		return c
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("discarding undecodable scan cache", "path", path, "error", err)
		return c
	}
	if file.Version != cacheVersion {
		slog.Info("discarding scan cache with old version", "path", path, "version", file.Version)
		return c
	}
	if file.Entries != nil {
		c.entries = file.Entries
	}
	slog.Debug("loaded scan cache", "path", path, "entries", len(c.entries))
	return c
}

// Save writes the cache back to disk.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(cacheFile{Version: cacheVersion, Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scan cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write scan cache: %w", err)
	}
	return nil
}

// Get returns the entry for filename when its stamp still matches the
// file's current size and modification time.
func (c *Cache) Get(filename string, size int64, modTime time.Time) (CacheEntry, bool) {
	entry, ok := c.entries[filename]
	if !ok {
		return CacheEntry{}, false
	}
	if entry.Size != size || entry.Stamp != stamp(filename, size, modTime) {
		slog.Debug("scan cache entry outdated", "archive", filename)
		return CacheEntry{}, false
	}
	return entry, true
}

// Put records a fresh summary for filename.
func (c *Cache) Put(filename string, size int64, modTime time.Time, info *ModInfo) CacheEntry {
	entry := CacheEntry{
		Name:       info.Name,
		Author:     info.Author,
		Type:       info.Type,
		Version:    info.Version,
		Sorted:     info.IsSorted,
		Size:       size,
		Stamp:      stamp(filename, size, modTime),
		AnalyzedAt: time.Now().UTC(),
	}
	c.entries[filename] = entry
	return entry
}

// Remove drops the entry for filename, if any.
func (c *Cache) Remove(filename string) {
	delete(c.entries, filename)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Entries returns the cached summaries keyed by archive filename.
func (c *Cache) Entries() map[string]CacheEntry {
	out := make(map[string]CacheEntry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// stamp fingerprints an archive's identity-relevant stat data. Any change
// to name, size or mtime invalidates the cached summary.
func stamp(filename string, size int64, modTime time.Time) uint32 {
	payload := fmt.Sprintf("%s\x00%d\x00%d", filename, size, modTime.UnixNano())
	return murmur.MurmurHash2([]byte(payload), murmurSeed)
}

// Summarize returns the cached summary for an archive, inspecting it (and
// updating the cache) when no valid entry exists. With refresh set the
// cache is bypassed and rewritten.
func Summarize(dir, filename string, cache *Cache, refresh bool) (CacheEntry, error) {
	path := filepath.Join(dir, filename)
	st, err := os.Stat(path)
	if err != nil {
		return CacheEntry{}, fmt.Errorf("stat archive: %w", err)
	}

	if !refresh {
		if entry, ok := cache.Get(filename, st.Size(), st.ModTime()); ok {
			return entry, nil
		}
	}

	info, err := Inspect(path)
	if err != nil {
		cache.Remove(filename)
		return CacheEntry{}, err
	}
	return cache.Put(filename, st.Size(), st.ModTime(), info), nil
}
