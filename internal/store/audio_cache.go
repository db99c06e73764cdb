package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/ports"
)

type audioEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryAudioCache holds synthesized audio for the short window between a
// webhook response and the provider fetching the referenced payload.
// Each Put schedules a timer delete, and Get also checks the stored
// expiry so a late timer never serves stale bytes.
// Used when no Redis URL is configured.
type MemoryAudioCache struct {
	mu      sync.RWMutex
	entries map[string]audioEntry
	ttl     time.Duration
	log     *zap.Logger

	// afterFunc is swappable so tests can trigger eviction deterministically.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewMemoryAudioCache creates an in-memory audio cache with the given TTL.
func NewMemoryAudioCache(ttl time.Duration, log *zap.Logger) *MemoryAudioCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	c := &MemoryAudioCache{
		entries:   make(map[string]audioEntry),
		ttl:       ttl,
		log:       log,
		afterFunc: time.AfterFunc,
	}

	log.Info("In-memory audio cache initialized", zap.Duration("ttl", ttl))
	return c
}

var _ ports.AudioCache = (*MemoryAudioCache)(nil)

func (c *MemoryAudioCache) Put(ctx context.Context, id string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	c.mu.Lock()
	c.entries[id] = audioEntry{data: buf, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	c.afterFunc(c.ttl, func() {
		if err := c.Delete(context.Background(), id); err == nil {
			c.log.Debug("Evicted audio cache entry", zap.String("id", id))
		}
	})

	return nil
}

func (c *MemoryAudioCache) Get(ctx context.Context, id string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok || entry.expiresAt.Before(time.Now()) {
		return nil, domain.ErrNotFound
	}

	buf := make([]byte, len(entry.data))
	copy(buf, entry.data)
	return buf, nil
}

// Delete removes the entry. Deleting an already-evicted id is a no-op.
func (c *MemoryAudioCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *MemoryAudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryAudioCache) Ping() error {
	return nil
}

func (c *MemoryAudioCache) Close() error {
	return nil
}
