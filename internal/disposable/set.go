// Package disposable tracks domains of known throwaway-mailbox providers.
// Lookups run against an immutable snapshot that is replaced atomically on
// refresh, so the request path never blocks and never observes a partial
// update.
package disposable

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultSourceURL is the community-maintained disposable-domain list.
const DefaultSourceURL = "https://raw.githubusercontent.com/disposable/disposable-email-domains/master/domains.json"

//go:embed list.txt
var embeddedList string

// Set is a process-wide, read-mostly set of disposable domains.
type Set struct {
	snapshot  atomic.Pointer[map[string]struct{}]
	sourceURL string
	client    *http.Client
}

// NewSet builds a set seeded from the embedded list. sourceURL is the
// remote list used by Refresh; empty means DefaultSourceURL.
func NewSet(sourceURL string) *Set {
	if sourceURL == "" {
		sourceURL = DefaultSourceURL
	}
	s := &Set{
		sourceURL: sourceURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	s.Replace(parseLines(embeddedList))
	return s
}

// Contains reports whether the domain is a known disposable domain.
// O(1), no I/O; safe for concurrent use with Refresh.
func (s *Set) Contains(domain string) bool {
	m := *s.snapshot.Load()
	_, ok := m[strings.ToLower(domain)]
	return ok
}

// Len returns the size of the current snapshot.
func (s *Set) Len() int {
	return len(*s.snapshot.Load())
}

// Replace swaps in a new snapshot built from the given domains.
// In-flight lookups keep reading the old snapshot until the swap.
func (s *Set) Replace(domains []string) {
	m := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			m[d] = struct{}{}
		}
	}
	s.snapshot.Store(&m)
}

// Refresh fetches the remote list and atomically replaces the snapshot.
// On any failure the current snapshot stays in place.
func (s *Set) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sourceURL, nil)
	if err != nil {
		return fmt.Errorf("disposable: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("disposable: fetch list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("disposable: fetch list: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("disposable: read list: %w", err)
	}

	domains, err := parseBody(body)
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		return fmt.Errorf("disposable: refusing to replace snapshot with empty list")
	}

	s.Replace(domains)
	return nil
}

// parseBody accepts either a JSON string array (the format of the
// default source) or a newline-separated plain list.
func parseBody(body []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var domains []string
		if err := json.Unmarshal(body, &domains); err != nil {
			return nil, fmt.Errorf("disposable: decode list: %w", err)
		}
		return domains, nil
	}
	return parseLines(trimmed), nil
}

func parseLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}
