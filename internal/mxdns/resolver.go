// Package mxdns resolves the DNS records that matter for mail routing:
// MX records with their answer TTLs, and address records for the
// implicit-MX fallback.
package mxdns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	mdns "github.com/miekg/dns"

	"github.com/optimode/deliverkit/types"
)

// Lookup failure classification.
var (
	// ErrNotFound is an authoritative negative answer (NXDOMAIN).
	ErrNotFound = errors.New("mxdns: no such domain")
	// ErrTimeout means no answer arrived within the deadline.
	// Timed-out queries are retried once before this surfaces.
	ErrTimeout = errors.New("mxdns: query timed out")
	// ErrResolutionFailed is a server-side failure (SERVFAIL, REFUSED,
	// or a transport error that is not a timeout).
	ErrResolutionFailed = errors.New("mxdns: resolution failed")
)

// Config contains configuration for the resolver.
type Config struct {
	// Nameservers to query (e.g. "8.8.8.8:53"). If empty, servers from
	// /etc/resolv.conf are used, falling back to public DNS.
	Nameservers []string

	// Timeout is the overall budget for one lookup. Each network
	// exchange gets a quarter of it, so a timed-out query still has
	// room for its retry and a fallback nameserver. Default is 5
	// seconds.
	Timeout time.Duration
}

// Resolver performs MX and address lookups using github.com/miekg/dns.
type Resolver struct {
	cfg    Config
	client *mdns.Client
}

// New creates a resolver. Missing configuration falls back to defaults.
func New(cfg Config) *Resolver {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if len(cfg.Nameservers) == 0 {
		cfg.Nameservers = systemNameservers()
	}
	return &Resolver{
		cfg: cfg,
		// A single exchange must not consume the whole budget, or the
		// timeout retry in query() could never run.
		client: &mdns.Client{Timeout: cfg.Timeout / 4},
	}
}

// systemNameservers reads resolv.conf, falling back to public DNS.
func systemNameservers() []string {
	conf, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		if !strings.Contains(s, ":") {
			s += ":53"
		}
		servers = append(servers, s)
	}
	return servers
}

// MXResult is the outcome of an MX lookup.
type MXResult struct {
	// Records sorted ascending by priority, ties broken by host.
	// Empty when the domain publishes no MX records.
	Records []types.MXRecord
	// NullMX is true when the domain publishes the RFC 7505 null MX
	// (a single record with host "."), meaning it accepts no mail.
	NullMX bool
	// TTL is the smallest answer TTL, zero when there was no answer.
	TTL time.Duration
}

// HostResult is the outcome of an address-record existence check.
type HostResult struct {
	Found bool
	TTL   time.Duration
}

// LookupMX retrieves and sorts the MX records for a domain.
// A successful response with no MX answers yields an empty Records
// slice and a nil error; NXDOMAIN yields ErrNotFound.
func (r *Resolver) LookupMX(ctx context.Context, domain string) (MXResult, error) {
	resp, err := r.query(ctx, domain, mdns.TypeMX)
	if err != nil {
		return MXResult{}, err
	}

	var records []types.MXRecord
	ttl := minTTL(resp.Answer)
	for _, rr := range resp.Answer {
		mx, ok := rr.(*mdns.MX)
		if !ok {
			continue
		}
		host := strings.TrimSuffix(mx.Mx, ".")
		if host == "" {
			// RFC 7505 null MX: the domain refuses all mail.
			if len(resp.Answer) == 1 {
				return MXResult{NullMX: true, TTL: ttl}, nil
			}
			continue
		}
		records = append(records, types.MXRecord{Host: strings.ToLower(host), Priority: mx.Preference})
	}

	SortRecords(records)
	return MXResult{Records: records, TTL: ttl}, nil
}

// LookupHost reports whether the domain resolves to at least one
// address record (A, then AAAA). Used for the implicit-MX fallback.
func (r *Resolver) LookupHost(ctx context.Context, domain string) (HostResult, error) {
	for _, qtype := range []uint16{mdns.TypeA, mdns.TypeAAAA} {
		resp, err := r.query(ctx, domain, qtype)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return HostResult{}, nil
			}
			return HostResult{}, err
		}
		for _, rr := range resp.Answer {
			switch rr.(type) {
			case *mdns.A, *mdns.AAAA:
				return HostResult{Found: true, TTL: minTTL(resp.Answer)}, nil
			}
		}
	}
	return HostResult{}, nil
}

// query sends one question, retrying once when the only failure mode
// was a timeout.
func (r *Resolver) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	m := new(mdns.Msg)
	m.SetQuestion(ensureAbsolute(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		for _, server := range r.cfg.Nameservers {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			default:
			}

			resp, _, err := r.client.ExchangeContext(ctx, m, server)
			if err != nil {
				if isTimeout(err) {
					lastErr = fmt.Errorf("%w: %v", ErrTimeout, err)
				} else {
					lastErr = fmt.Errorf("%w: %v", ErrResolutionFailed, err)
				}
				continue
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, nil
			case mdns.RcodeNameError:
				return nil, ErrNotFound
			default:
				lastErr = fmt.Errorf("%w: rcode %s", ErrResolutionFailed,
					mdns.RcodeToString[resp.Rcode])
			}
		}
		// Only timeouts earn the single retry.
		if !errors.Is(lastErr, ErrTimeout) {
			break
		}
	}
	if lastErr == nil {
		lastErr = ErrResolutionFailed
	}
	return nil, lastErr
}

// SortRecords orders MX records ascending by priority, ties broken by
// host name for determinism.
func SortRecords(records []types.MXRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority < records[j].Priority
		}
		return records[i].Host < records[j].Host
	})
}

// ensureAbsolute ensures the name ends with a dot (FQDN form).
func ensureAbsolute(name string) string {
	if !strings.HasSuffix(name, ".") {
		return name + "."
	}
	return name
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func minTTL(answers []mdns.RR) time.Duration {
	min := time.Duration(0)
	for _, rr := range answers {
		ttl := time.Duration(rr.Header().Ttl) * time.Second
		if min == 0 || ttl < min {
			min = ttl
		}
	}
	return min
}
