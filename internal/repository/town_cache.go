package repository

import (
	"time"

	"ville-ideale-api/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheSize = 1000
	DefaultCacheTTL  = time.Hour
)

// TownCache is the in-memory store of scraped towns. Entries expire after the
// TTL and the least recently used entry is evicted once the size bound is hit.
// It is safe for concurrent use.
type TownCache struct {
	lru *expirable.LRU[string, *models.TownRecord]
}

// NewTownCache creates a new bounded, expiring town cache
func NewTownCache(size int, ttl time.Duration) *TownCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TownCache{lru: expirable.NewLRU[string, *models.TownRecord](size, nil, ttl)}
}

// Get returns the cached town for key if present and not expired.
func (c *TownCache) Get(key string) (*models.TownRecord, bool) {
	return c.lru.Get(key)
}

// Add stores town under key, resetting its expiry.
func (c *TownCache) Add(key string, town *models.TownRecord) {
	c.lru.Add(key, town)
}

// Len returns the number of entries, including ones not yet purged.
func (c *TownCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *TownCache) Purge() {
	c.lru.Purge()
}
