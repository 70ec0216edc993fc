package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SMTPEnabled)
	assert.Equal(t, 5*time.Second, cfg.DNSTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DNSCacheTTL)
	assert.Equal(t, 100, cfg.BatchMaxSize)
	assert.Equal(t, 5, cfg.BatchWorkers)
	assert.True(t, cfg.SMTPDetectCatchAll)
	assert.Equal(t, 24*time.Hour, cfg.DisposableRefreshEvery)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SMTP_CHECK_ENABLED", "true")
	t.Setenv("SMTP_HELO_DOMAIN", "probe.example.net")
	t.Setenv("SMTP_FROM_EMAIL", "verify@example.net")
	t.Setenv("SMTP_TIMEOUT", "30")
	t.Setenv("DNS_CACHE_TTL", "90s")
	t.Setenv("DNS_NAMESERVERS", "10.0.0.1:53, 10.0.0.2:53")
	t.Setenv("BATCH_WORKERS", "12")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.True(t, cfg.SMTPEnabled)
	assert.Equal(t, "probe.example.net", cfg.SMTPHeloDomain)
	assert.Equal(t, "verify@example.net", cfg.SMTPMailFrom)
	assert.Equal(t, 30*time.Second, cfg.SMTPCommandTimeout, "bare integers are seconds")
	assert.Equal(t, 90*time.Second, cfg.DNSCacheTTL)
	assert.Equal(t, []string{"10.0.0.1:53", "10.0.0.2:53"}, cfg.Nameservers)
	assert.Equal(t, 12, cfg.BatchWorkers)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("BATCH_MAX_SIZE", "lots")
	t.Setenv("SMTP_CHECK_ENABLED", "yes please")
	t.Setenv("DNS_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 100, cfg.BatchMaxSize)
	assert.False(t, cfg.SMTPEnabled)
	assert.Equal(t, 5*time.Second, cfg.DNSTimeout)
}
