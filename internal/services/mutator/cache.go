package mutator

import (
	"sync"
	"time"

	"bankledger/internal/repos/accounts"
)

// accountCache is a small TTL read cache for account lookups. Invalidation
// happens explicitly at every balance commit point and bumps a per-account
// epoch; a put carries the epoch observed before the repo read and is
// dropped if an invalidation landed in between, so a slow reader cannot
// re-cache a pre-commit snapshot.
type accountCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	epochs  map[string]uint64
}

type cacheEntry struct {
	acct      accounts.Account
	expiresAt time.Time
}

func newAccountCache(ttl time.Duration) *accountCache {
	return &accountCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		epochs:  make(map[string]uint64),
	}
}

func (c *accountCache) get(accountNumber string) (*accounts.Account, bool) {
	c.mu.RLock()
	e, ok := c.entries[accountNumber]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}

	acct := e.acct

	return &acct, true
}

// epoch returns the account's current invalidation epoch. Callers read it
// before hitting the store and pass it back to put.
func (c *accountCache) epoch(accountNumber string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.epochs[accountNumber]
}

func (c *accountCache) put(acct *accounts.Account, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epochs[acct.AccountNumber] != epoch {
		// Invalidated since the caller read; the snapshot may be stale.
		return
	}

	c.entries[acct.AccountNumber] = cacheEntry{
		acct:      *acct,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *accountCache) invalidate(accountNumber string) {
	c.mu.Lock()
	delete(c.entries, accountNumber)
	c.epochs[accountNumber]++
	c.mu.Unlock()
}
