package check

import (
	"context"
	"errors"
	"time"

	"github.com/optimode/deliverkit/internal/mxcache"
	"github.com/optimode/deliverkit/internal/mxdns"
	"github.com/optimode/deliverkit/types"
)

// Resolver is the DNS dependency of the MX checker. *mxdns.Resolver
// implements it; tests substitute deterministic fixtures.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) (mxdns.MXResult, error)
	LookupHost(ctx context.Context, domain string) (mxdns.HostResult, error)
}

// MXConfig is the MX checker configuration.
type MXConfig struct {
	// LookupTimeout bounds one resolution (including the fallback query).
	LookupTimeout time.Duration
	// CacheTTL is the ceiling for cache entry lifetimes; shorter DNS
	// answer TTLs win.
	CacheTTL time.Duration
}

// MXResult is the outcome of the MX stage.
type MXResult struct {
	HasMX   bool
	Records []types.MXRecord
	Detail  string // diagnostic for the negative cases
	Err     error  // Timeout or ResolutionFailed; nil for clean negatives
}

// MXChecker resolves a domain's mail hosts through a shared TTL cache
// with single-flight deduplication. When a domain has no MX record but
// resolves as a host itself, a single implicit record
// {host: domain, priority: 0} is synthesized per mail-routing convention.
type MXChecker struct {
	cache *mxcache.Cache
}

// NewMXChecker builds the checker on top of the given resolver.
func NewMXChecker(cfg MXConfig, r Resolver) *MXChecker {
	if cfg.LookupTimeout == 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &MXChecker{
		cache: mxcache.New(cfg.LookupTimeout, cfg.CacheTTL, resolveLookup(r)),
	}
}

// resolveLookup composes the MX query with the implicit-MX fallback into
// the function the cache runs on a miss. The composed answer is what
// gets cached, so the fallback is not repeated per request.
func resolveLookup(r Resolver) mxcache.LookupFunc {
	return func(ctx context.Context, domain string) (mxcache.Resolution, error) {
		mx, err := r.LookupMX(ctx, domain)
		switch {
		case errors.Is(err, mxdns.ErrNotFound):
			// Authoritative negative: the domain does not exist, so the
			// fallback cannot apply either.
			return mxcache.Resolution{Detail: "no such domain"}, nil
		case err != nil:
			return mxcache.Resolution{}, err
		case mx.NullMX:
			// RFC 7505: the domain explicitly accepts no mail.
			return mxcache.Resolution{Detail: "domain declines mail (null MX)", TTL: mx.TTL}, nil
		case len(mx.Records) > 0:
			return mxcache.Resolution{HasMX: true, Records: mx.Records, TTL: mx.TTL}, nil
		}

		// No MX published: fall back to the domain's own address record.
		host, err := r.LookupHost(ctx, domain)
		if err != nil {
			return mxcache.Resolution{}, err
		}
		if !host.Found {
			return mxcache.Resolution{Detail: "no MX or address records"}, nil
		}
		return mxcache.Resolution{
			HasMX:   true,
			Records: []types.MXRecord{{Host: domain, Priority: 0}},
			Detail:  "implicit MX from address record",
			TTL:     host.TTL,
		}, nil
	}
}

// Check resolves the domain's mail hosts. Timeouts and server failures
// come back in Err with HasMX=false; clean negative answers (NXDOMAIN,
// null MX, no records at all) have a nil Err and a Detail.
func (c *MXChecker) Check(ctx context.Context, domain string) MXResult {
	res, err := c.cache.Resolve(ctx, domain)
	if err != nil {
		detail := "MX resolution failed"
		switch {
		case errors.Is(err, mxdns.ErrTimeout), errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, context.Canceled):
			detail = "MX resolution timed out"
		}
		return MXResult{Detail: detail, Err: err}
	}
	return MXResult{HasMX: res.HasMX, Records: res.Records, Detail: res.Detail}
}

// CacheLen reports the number of cached domains (for diagnostics).
func (c *MXChecker) CacheLen() int {
	return c.cache.Len()
}
