// Package cache stores rendered search outcomes keyed by (query, count).
//
// Entries expire a fixed TTL after they were written. When the store is full
// the entry written longest ago is evicted; reads never refresh an entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Backend names reported by Stats.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config controls a store. A disabled store misses every lookup and drops
// every write; an enabled one requires TTL > 0 and MaxSize > 0.
type Config struct {
	Enabled bool
	TTL     time.Duration
	MaxSize int
	// Prefix namespaces redis keys; ignored by the memory store.
	Prefix string
}

// Stats is a read-only snapshot of a store.
type Stats struct {
	Enabled    bool   `json:"enabled"`
	Backend    string `json:"backend"`
	Size       int    `json:"size"`
	MaxSize    int    `json:"max_size"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// Store is the result cache shared by every request.
type Store interface {
	// Lookup returns the payload stored for (query, count) if it is younger than the TTL.
	Lookup(ctx context.Context, query string, count int) ([]byte, bool)
	// Store writes the payload, evicting the oldest entry when full.
	Store(ctx context.Context, query string, count int, data []byte) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Stats reports the store state without side effects.
	Stats(ctx context.Context) Stats
}

// Key fingerprints (query, count). The query is used exactly as given.
func Key(query string, count int) string {
	sum := sha256.Sum256([]byte(query + ":" + strconv.Itoa(count)))
	return hex.EncodeToString(sum[:])
}

func (c Config) active() bool {
	return c.Enabled && c.TTL > 0 && c.MaxSize > 0
}

func (c Config) stats(backend string, size int) Stats {
	return Stats{
		Enabled:    c.active(),
		Backend:    backend,
		Size:       size,
		MaxSize:    c.MaxSize,
		TTLSeconds: int64(c.TTL / time.Second),
	}
}
