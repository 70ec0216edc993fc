// Package parse turns a raw address string into its normalized parts.
// The check/ packages receive the parsed form; DNS and SMTP always
// operate on the ASCII (A-label) domain.
package parse

import (
	"net/mail"
	"strings"

	"golang.org/x/net/idna"
)

// Email is the internal representation of a parsed email address.
// The domain is folded to lower case; the local part is preserved
// verbatim. An Email is immutable once built.
type Email struct {
	Raw           string // original input, trimmed
	Local         string // part before @, case preserved
	Domain        string // part after @, lower-cased ASCII/Punycode form
	DomainUnicode string // part after @, Unicode form (display, typo matching)
	Valid         bool   // false if Raw could not be split into local@domain
}

// Address returns the normalized local@domain form used on the wire
// (ASCII domain, verbatim local part).
func (e Email) Address() string {
	return e.Local + "@" + e.Domain
}

// NewEmail parses the given address string. When parsing fails,
// Valid is false but Raw is always populated. Internationalized
// addresses (RFC 6531 / EAI) and internationalized domain names
// (IDNA2008) are supported.
func NewEmail(raw string) Email {
	raw = strings.TrimSpace(raw)

	// net/mail handles the common ASCII grammar, including quoted
	// local parts and display-name forms.
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		addr, err = mail.ParseAddress("<" + raw + ">")
	}
	if err == nil {
		local, domain, ok := splitAddress(addr.Address)
		if !ok {
			return Email{Raw: raw, Valid: false}
		}
		return build(raw, local, domain)
	}

	// net/mail rejects Unicode local parts (RFC 6531 SMTPUTF8);
	// split on the last @ ourselves.
	local, domain, ok := splitAddress(raw)
	if !ok {
		return Email{Raw: raw, Valid: false}
	}
	return build(raw, local, domain)
}

func splitAddress(s string) (local, domain string, ok bool) {
	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 {
		return "", "", false
	}
	return s[:at], s[at+1:], true
}

// build assembles the Email with both domain forms. The ASCII form is
// what DNS and SMTP see; the Unicode form is for display and typo
// matching.
func build(raw, local, domain string) Email {
	domain = strings.ToLower(domain)

	ascii, unicode, ok := domainForms(domain)
	if !ok {
		return Email{Raw: raw, Valid: false}
	}

	return Email{
		Raw:           raw,
		Local:         local,
		Domain:        ascii,
		DomainUnicode: unicode,
		Valid:         true,
	}
}

// domainForms converts a lower-cased domain to its ASCII/Punycode and
// Unicode forms. ok is false when a non-ASCII domain fails IDNA2008
// validation.
func domainForms(domain string) (ascii, unicode string, ok bool) {
	nonASCII := false
	for _, r := range domain {
		if r > 127 {
			nonASCII = true
			break
		}
	}

	if nonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Already ASCII; decode any existing Punycode labels for display
	// (xn--mnchen-3ya.de -> münchen.de).
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, true
}
