package check

import (
	"strings"

	"github.com/optimode/deliverkit/internal/disposable"
	"github.com/optimode/deliverkit/internal/levenshtein"
	"github.com/optimode/deliverkit/internal/parse"
)

// DomainConfig is the domain checker configuration.
type DomainConfig struct {
	CheckTypos    bool
	TypoThreshold int // Levenshtein distance for typo suspicion
}

// DomainResult is the outcome of the domain stage.
type DomainResult struct {
	Disposable bool
	Suggestion string // closest known provider when a typo is suspected
}

// DomainChecker matches the domain against the disposable-domain
// snapshot and, optionally, suggests corrections for close misspellings
// of major providers. No I/O on the request path.
type DomainChecker struct {
	cfg            DomainConfig
	set            *disposable.Set
	knownProviders []string
}

// defaultKnownProviders are major email providers used for typo
// detection. A domain within TypoThreshold distance of one of these
// yields a suggestion without affecting the verdict.
var defaultKnownProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com",
	"icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me",
	"aol.com",
	"zoho.com",
	"yandex.com", "yandex.ru",
	"mail.com",
	"gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
	"tutanota.com",
}

// NewDomainChecker builds the checker over the given disposable set.
func NewDomainChecker(cfg DomainConfig, set *disposable.Set) *DomainChecker {
	if cfg.TypoThreshold == 0 {
		cfg.TypoThreshold = 2
	}
	return &DomainChecker{
		cfg:            cfg,
		set:            set,
		knownProviders: defaultKnownProviders,
	}
}

func (c *DomainChecker) Check(email parse.Email) DomainResult {
	if !email.Valid {
		return DomainResult{}
	}

	// The disposable list is ASCII; match on the A-label form. Typo
	// matching uses the Unicode form for better edit distances.
	res := DomainResult{
		Disposable: c.set.Contains(email.Domain),
	}

	if c.cfg.CheckTypos {
		res.Suggestion = c.typoSuggestion(strings.ToLower(email.DomainUnicode))
	}

	return res
}

// typoSuggestion finds the closest known provider within the threshold.
// Exact matches and distant domains yield no suggestion.
func (c *DomainChecker) typoSuggestion(domain string) string {
	bestDist := c.cfg.TypoThreshold + 1
	bestMatch := ""

	for _, provider := range c.knownProviders {
		if domain == provider {
			return ""
		}
		dist := levenshtein.Distance(domain, provider)
		if dist <= c.cfg.TypoThreshold && dist < bestDist {
			bestDist = dist
			bestMatch = provider
		}
	}

	return bestMatch
}
