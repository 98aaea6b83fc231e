package metadata

import (
	"sync"
	"time"

	"github.com/starsandeep/sfsync/pkg/models"
)

// MappingCache keeps the last successfully fetched field mapping per object,
// for use when a later fetch fails.
type MappingCache struct {
	cache   map[string]*cacheEntry
	mu      sync.RWMutex
	maxSize int
	ttl     time.Duration
	hits    int64
	misses  int64
	now     func() time.Time
}

type cacheEntry struct {
	entries   []models.FieldMappingEntry
	expiresAt time.Time
}

type MappingCacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

func DefaultMappingCacheConfig() MappingCacheConfig {
	return MappingCacheConfig{
		MaxSize: 1000,
		TTL:     time.Hour,
	}
}

func NewMappingCache(config MappingCacheConfig) *MappingCache {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultMappingCacheConfig().MaxSize
	}
	if config.TTL <= 0 {
		config.TTL = DefaultMappingCacheConfig().TTL
	}
	return &MappingCache{
		cache:   make(map[string]*cacheEntry),
		maxSize: config.MaxSize,
		ttl:     config.TTL,
		now:     time.Now,
	}
}

// Get returns a copy of the cached mapping for an object.
func (c *MappingCache) Get(objectName string) ([]models.FieldMappingEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache[objectName]
	if !exists || !c.now().Before(entry.expiresAt) {
		c.misses++
		return nil, false
	}
	c.hits++
	return cloneEntries(entry.entries), true
}

// Put records a successful fetch.
func (c *MappingCache) Put(objectName string, entries []models.FieldMappingEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[objectName]; !exists && len(c.cache) >= c.maxSize {
		c.evictHalf()
	}

	c.cache[objectName] = &cacheEntry{
		entries:   cloneEntries(entries),
		expiresAt: c.now().Add(c.ttl),
	}
}

// evictHalf removes half the cache entries (must be called with lock held)
func (c *MappingCache) evictHalf() {
	count := 0
	target := len(c.cache) / 2
	for key := range c.cache {
		delete(c.cache, key)
		count++
		if count >= target {
			break
		}
	}
}

func (c *MappingCache) Invalidate(objectName string) {
	c.mu.Lock()
	delete(c.cache, objectName)
	c.mu.Unlock()
}

func (c *MappingCache) Clear() {
	c.mu.Lock()
	c.cache = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

type CacheStats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func (c *MappingCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Size:   len(c.cache),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

func cloneEntries(entries []models.FieldMappingEntry) []models.FieldMappingEntry {
	out := make([]models.FieldMappingEntry, len(entries))
	for i, e := range entries {
		e.ValueMap = append([]models.ValueMapEntry(nil), e.ValueMap...)
		out[i] = e
	}
	return out
}
