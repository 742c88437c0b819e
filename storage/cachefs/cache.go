// Package cachefs is a small TTL cache over JSON files in the app data
// directory. Each entry wraps its payload with a write timestamp and a
// version tag; an expired entry reads as absent and is removed.
package cachefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
)

// DefaultTTL bounds how long a cached collection may serve reads.
const DefaultTTL = 5 * time.Minute

type (
	Entry struct {
		Data      json.RawMessage `json:"data"`
		Timestamp time.Time       `json:"timestamp"`
		Version   string          `json:"version"`
	}

	Cache struct {
		dir   string
		ttl   time.Duration
		clock core.Clock
	}
)

func New(dir string, ttl time.Duration, clock core.Clock) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	return &Cache{dir: dir, ttl: ttl, clock: clock}, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".cache.json")
}

// Set stores the raw JSON document under key with the current timestamp and
// a version tag.
func (c *Cache) Set(key string, data []byte, version string) error {
	entry := Entry{Data: data, Timestamp: c.clock.Now(), Version: version}
	buf, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshaling cache entry")
	}
	if err := os.WriteFile(c.path(key), buf, 0o644); err != nil {
		return errors.Wrap(err, "writing cache entry")
	}
	return nil
}

// Get returns the cached document for key. It reports false when the entry
// is missing, unreadable or older than the TTL; an expired entry is removed.
func (c *Cache) Get(key string) ([]byte, bool) {
	entry, ok := c.read(key)
	if !ok {
		return nil, false
	}

	if c.clock.Now().Sub(entry.Timestamp) > c.ttl {
		c.Remove(key)
		return nil, false
	}
	return entry.Data, true
}

// Version returns the version tag of the entry, expired or not.
func (c *Cache) Version(key string) string {
	if entry, ok := c.read(key); ok {
		return entry.Version
	}
	return ""
}

// IsValid reports whether a non-expired entry exists for key.
func (c *Cache) IsValid(key string) bool {
	entry, ok := c.read(key)
	return ok && c.clock.Now().Sub(entry.Timestamp) <= c.ttl
}

// Age returns how long ago the entry was written.
func (c *Cache) Age(key string) (time.Duration, bool) {
	entry, ok := c.read(key)
	if !ok {
		return 0, false
	}
	return c.clock.Now().Sub(entry.Timestamp), true
}

// Touch refreshes the entry's timestamp without changing its payload.
func (c *Cache) Touch(key string) {
	entry, ok := c.read(key)
	if !ok {
		return
	}
	entry.Timestamp = c.clock.Now()
	if buf, err := json.Marshal(entry); err == nil {
		_ = os.WriteFile(c.path(key), buf, 0o644)
	}
}

func (c *Cache) Remove(key string) {
	_ = os.Remove(c.path(key))
}

// Clear drops every cache entry in the directory.
func (c *Cache) Clear() {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.cache.json"))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

func (c *Cache) read(key string) (Entry, bool) {
	buf, err := os.ReadFile(c.path(key))
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(buf, &entry); err != nil {
		c.Remove(key)
		return Entry{}, false
	}
	return entry, true
}
