// Package config loads the service configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the deliverability service.
type Config struct {
	Environment string
	ServerPort  string
	LogLevel    string

	// CORS origins, comma separated. "*" allows any origin.
	AllowedOrigins string

	// DNS
	DNSTimeout  time.Duration
	DNSCacheTTL time.Duration
	Nameservers []string

	// SMTP probe
	SMTPEnabled        bool
	SMTPHeloDomain     string
	SMTPMailFrom       string
	SMTPConnectTimeout time.Duration
	SMTPCommandTimeout time.Duration
	SMTPPort           string
	SMTPMaxMXHosts     int
	SMTPDetectCatchAll bool

	// Disposable-domain list
	DisposableSourceURL      string
	DisposableRefreshEnabled bool
	DisposableRefreshEvery   time.Duration

	// Batch validation
	BatchMaxSize int
	BatchWorkers int
}

// Load reads the environment into a Config. A .env file in the working
// directory is applied first when present; real environment variables
// always win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		DNSTimeout:  getEnvAsDuration("DNS_TIMEOUT", 5*time.Second),
		DNSCacheTTL: getEnvAsDuration("DNS_CACHE_TTL", 5*time.Minute),
		Nameservers: getEnvAsList("DNS_NAMESERVERS"),

		SMTPEnabled:        getEnvAsBool("SMTP_CHECK_ENABLED", false),
		SMTPHeloDomain:     getEnv("SMTP_HELO_DOMAIN", ""),
		SMTPMailFrom:       getEnv("SMTP_FROM_EMAIL", ""),
		SMTPConnectTimeout: getEnvAsDuration("SMTP_CONNECT_TIMEOUT", 5*time.Second),
		SMTPCommandTimeout: getEnvAsDuration("SMTP_TIMEOUT", 10*time.Second),
		SMTPPort:           getEnv("SMTP_PORT", "25"),
		SMTPMaxMXHosts:     getEnvAsInt("SMTP_MAX_MX_HOSTS", 3),
		SMTPDetectCatchAll: getEnvAsBool("SMTP_DETECT_CATCH_ALL", true),

		DisposableSourceURL:      getEnv("DISPOSABLE_SOURCE_URL", ""),
		DisposableRefreshEnabled: getEnvAsBool("DISPOSABLE_REFRESH_ENABLED", true),
		DisposableRefreshEvery:   getEnvAsDuration("DISPOSABLE_REFRESH_INTERVAL", 24*time.Hour),

		BatchMaxSize: getEnvAsInt("BATCH_MAX_SIZE", 100),
		BatchWorkers: getEnvAsInt("BATCH_WORKERS", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("30s", "5m") and, for
// compatibility with older deployments, bare integers meaning seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
