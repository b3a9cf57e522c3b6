package qr

import (
	"sync"
	"time"
)

// Cache keeps the latest login QR of the active client. Records from any
// other client are ignored so a destroyed instance never leaks a stale code.
type Cache struct {
	mu        sync.RWMutex
	owner     string
	payload   string
	produced  bool
	updatedAt time.Time
}

func NewCache() *Cache {
	return &Cache{}
}

// Bind empties the slot and accepts records only from owner from now on.
func (c *Cache) Bind(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = owner
	c.payload = ""
	c.produced = false
	c.updatedAt = time.Now()
}

// Record overwrites the slot. It returns false when owner is not bound.
func (c *Cache) Record(owner, payload string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner != c.owner || owner == "" {
		return false
	}
	c.payload = payload
	c.produced = true
	c.updatedAt = time.Now()
	return true
}

func (c *Cache) Read() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.payload, c.payload != ""
}

// Clear drops the payload but keeps the owner and the produced flag.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = ""
	c.updatedAt = time.Now()
}

// Produced reports whether the bound owner ever recorded a payload.
func (c *Cache) Produced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.produced
}

func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}
