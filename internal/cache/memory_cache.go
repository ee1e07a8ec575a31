package cache

import (
	"sync"
	"time"

	"github.com/epeers/bondrisk/internal/analytics"
)

// MemoryCache provides an in-memory L1 cache for bond reference data
type MemoryCache struct {
	bonds   map[string]bondEntry
	bondMu  sync.RWMutex
	bondTTL time.Duration
	now     func() time.Time
}

type bondEntry struct {
	bond      *analytics.Bond
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache whose entries expire after bondTTL
func NewMemoryCache(bondTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		bonds:   make(map[string]bondEntry),
		bondTTL: bondTTL,
		now:     time.Now,
	}
}

// GetBond retrieves a cached bond if fresh
func (c *MemoryCache) GetBond(isin string) (*analytics.Bond, bool) {
	c.bondMu.RLock()
	defer c.bondMu.RUnlock()

	entry, exists := c.bonds[isin]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.bondTTL {
		return nil, false
	}
	return entry.bond, true
}

// GetBonds splits isins into cached bonds and the ISINs that still need a lookup
func (c *MemoryCache) GetBonds(isins []string) (map[string]*analytics.Bond, []string) {
	found := make(map[string]*analytics.Bond, len(isins))
	var missing []string
	for _, isin := range isins {
		if b, ok := c.GetBond(isin); ok {
			found[isin] = b
			continue
		}
		missing = append(missing, isin)
	}
	return found, missing
}

// SetBond caches a bond under its ISIN
func (c *MemoryCache) SetBond(bond *analytics.Bond) {
	c.bondMu.Lock()
	defer c.bondMu.Unlock()

	c.bonds[bond.ISIN] = bondEntry{
		bond:      bond,
		fetchedAt: c.now(),
	}
}

// InvalidateBond removes a bond from the cache
func (c *MemoryCache) InvalidateBond(isin string) {
	c.bondMu.Lock()
	defer c.bondMu.Unlock()

	delete(c.bonds, isin)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.bondMu.Lock()
	c.bonds = make(map[string]bondEntry)
	c.bondMu.Unlock()
}
