// Package mxcache provides a thread-safe, TTL-bounded cache for mail-routing
// lookups with singleflight deduplication: concurrent callers for the same
// domain await a single outstanding lookup instead of issuing duplicates.
package mxcache

import (
	"context"
	"sync"
	"time"

	"github.com/optimode/deliverkit/types"
)

// negativeTTL bounds how long a failed lookup is remembered.
const negativeTTL = 30 * time.Second

// sweepEvery is how many inserts pass between reaps of expired
// entries. Keeps a long-lived process from holding one entry per
// domain ever seen.
const sweepEvery = 64

// Resolution is what the cache stores per domain: the final answer of
// the MX lookup including the implicit-MX fallback.
type Resolution struct {
	HasMX   bool
	Records []types.MXRecord
	Detail  string        // diagnostic, e.g. "no such domain"
	TTL     time.Duration // smallest answer TTL; capped by the cache ceiling
}

// LookupFunc performs the actual resolution on a cache miss.
type LookupFunc func(ctx context.Context, domain string) (Resolution, error)

// Cache deduplicates and caches resolutions per domain. An in-flight
// lookup for one domain never blocks lookups for other domains.
type Cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	inserts       int
	ttlCeiling    time.Duration
	lookupTimeout time.Duration
	lookup        LookupFunc
}

type entry struct {
	res     Resolution
	err     error
	expires time.Time
	done    chan struct{} // closed when the lookup completes
}

// New creates a cache. Entries expire after min(answer TTL, ttlCeiling);
// failed lookups are remembered briefly so a flapping resolver is not
// hammered.
func New(lookupTimeout, ttlCeiling time.Duration, lookup LookupFunc) *Cache {
	return &Cache{
		entries:       make(map[string]*entry),
		ttlCeiling:    ttlCeiling,
		lookupTimeout: lookupTimeout,
		lookup:        lookup,
	}
}

// Resolve returns the resolution for the domain, using the cache when
// possible. Concurrent callers for the same domain share one lookup;
// each caller's wait is bounded by its own context.
func (c *Cache) Resolve(ctx context.Context, domain string) (Resolution, error) {
	c.mu.Lock()

	if e, ok := c.entries[domain]; ok {
		select {
		case <-e.done:
			if time.Now().Before(e.expires) {
				c.mu.Unlock()
				return e.res, e.err
			}
			// expired, fall through to refresh
		default:
			// lookup in progress, wait for it
			c.mu.Unlock()
			select {
			case <-e.done:
				return e.res, e.err
			case <-ctx.Done():
				return Resolution{}, ctx.Err()
			}
		}
	}

	c.inserts++
	if c.inserts%sweepEvery == 0 {
		c.reapExpiredLocked()
	}
	e := &entry{done: make(chan struct{})}
	c.entries[domain] = e
	c.mu.Unlock()

	// The lookup runs detached from the first caller's cancellation so
	// that waiters still receive a result if that caller gives up.
	go func() {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.lookupTimeout)
		defer cancel()

		e.res, e.err = c.lookup(lctx, domain)
		e.expires = time.Now().Add(c.entryTTL(e))
		close(e.done)
	}()

	select {
	case <-e.done:
		return e.res, e.err
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	}
}

// entryTTL derives the expiry: min(answer TTL, ceiling) for answers,
// a short negative TTL for failures.
func (c *Cache) entryTTL(e *entry) time.Duration {
	if e.err != nil {
		if negativeTTL < c.ttlCeiling {
			return negativeTTL
		}
		return c.ttlCeiling
	}
	if e.res.TTL > 0 && e.res.TTL < c.ttlCeiling {
		return e.res.TTL
	}
	return c.ttlCeiling
}

// reapExpiredLocked removes completed entries past their expiry.
// In-flight entries are left alone. Caller holds c.mu.
func (c *Cache) reapExpiredLocked() {
	now := time.Now()
	for domain, e := range c.entries {
		select {
		case <-e.done:
			if now.After(e.expires) {
				delete(c.entries, domain)
			}
		default:
		}
	}
}

// Len returns the number of entries in the cache (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
