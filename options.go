package deliverkit

import (
	"net"
	"time"

	"github.com/optimode/deliverkit/check"
	"github.com/optimode/deliverkit/internal/disposable"
)

// Config enumerates every recognized option of the validation pipeline.
// DefaultConfig returns a fully-populated instance; New fills in any
// zero-valued durations, counts and strings, so a partially built
// Config is also usable.
type Config struct {
	DNS     DNSConfig
	Domain  DomainConfig
	SMTP    SMTPConfig
	Weights Weights
	Batch   BatchConfig
}

// DNSConfig configures MX resolution and its cache.
type DNSConfig struct {
	// LookupTimeout bounds one MX resolution. Default: 5s
	LookupTimeout time.Duration
	// CacheTTL is the ceiling for cache entry lifetimes; shorter DNS
	// answer TTLs win. Default: 5m
	CacheTTL time.Duration
	// Nameservers to query; empty means the system resolvers.
	Nameservers []string
	// Resolver overrides the miekg/dns-backed resolver (for testing).
	Resolver check.Resolver
}

// DomainConfig configures disposable matching and typo suggestions.
type DomainConfig struct {
	// CheckTypos enables provider typo suggestions. Suggestions never
	// fail an address, they only populate the Suggestion field.
	CheckTypos bool
	// TypoThreshold is the Levenshtein distance for typo suspicion.
	// Default: 2
	TypoThreshold int
	// SourceURL is the remote disposable-domain list used on refresh;
	// empty means the community default.
	SourceURL string
	// Set overrides the disposable set (for testing).
	Set *disposable.Set
}

// SMTPConfig configures the opt-in mailbox probe.
type SMTPConfig struct {
	// Enabled gates the probe globally; a request's check_smtp flag is
	// ignored when false.
	Enabled bool
	// HeloDomain is the domain sent in EHLO/HELO. Required when Enabled.
	HeloDomain string
	// MailFrom is the sender used in MAIL FROM. Required when Enabled.
	MailFrom string
	// ConnectTimeout bounds the TCP connect. Default: 5s
	ConnectTimeout time.Duration
	// CommandTimeout bounds each command/response exchange. Default: 10s
	CommandTimeout time.Duration
	// Port is the SMTP port. Default: "25"
	Port string
	// MaxMXHosts is how many MX hosts to try in priority order. Default: 3
	MaxMXHosts int
	// DetectCatchAll probes a nonexistent local part after acceptance;
	// a catch-all hit downgrades the verdict to unknown.
	DetectCatchAll bool
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// BatchConfig bounds batch validation.
type BatchConfig struct {
	// MaxSize is the largest accepted batch. Default: 100
	MaxSize int
	// Workers caps concurrently in-flight pipelines. Default: 5
	Workers int
}

// DefaultConfig returns the canonical configuration. SMTP probing is
// off until HeloDomain and MailFrom are set.
func DefaultConfig() Config {
	return Config{
		DNS: DNSConfig{
			LookupTimeout: 5 * time.Second,
			CacheTTL:      5 * time.Minute,
		},
		Domain: DomainConfig{
			CheckTypos:    true,
			TypoThreshold: 2,
		},
		SMTP: SMTPConfig{
			ConnectTimeout: 5 * time.Second,
			CommandTimeout: 10 * time.Second,
			Port:           "25",
			MaxMXHosts:     3,
			DetectCatchAll: true,
		},
		Weights: DefaultWeights(),
		Batch: BatchConfig{
			MaxSize: 100,
			Workers: 5,
		},
	}
}

// normalize fills zero values with the defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.DNS.LookupTimeout == 0 {
		c.DNS.LookupTimeout = def.DNS.LookupTimeout
	}
	if c.DNS.CacheTTL == 0 {
		c.DNS.CacheTTL = def.DNS.CacheTTL
	}
	if c.Domain.TypoThreshold == 0 {
		c.Domain.TypoThreshold = def.Domain.TypoThreshold
	}
	if c.SMTP.ConnectTimeout == 0 {
		c.SMTP.ConnectTimeout = def.SMTP.ConnectTimeout
	}
	if c.SMTP.CommandTimeout == 0 {
		c.SMTP.CommandTimeout = def.SMTP.CommandTimeout
	}
	if c.SMTP.Port == "" {
		c.SMTP.Port = def.SMTP.Port
	}
	if c.SMTP.MaxMXHosts == 0 {
		c.SMTP.MaxMXHosts = def.SMTP.MaxMXHosts
	}
	if c.Weights == (Weights{}) {
		c.Weights = def.Weights
	}
	if c.Batch.MaxSize == 0 {
		c.Batch.MaxSize = def.Batch.MaxSize
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = def.Batch.Workers
	}
}
