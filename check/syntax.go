package check

import (
	"strings"
	"unicode"

	"github.com/optimode/deliverkit/internal/parse"
)

// SyntaxResult is the outcome of the syntax stage.
type SyntaxResult struct {
	Valid  bool
	Reason string // empty when Valid
}

// SyntaxChecker validates address syntax according to RFC 5321/5322
// with RFC 6531 (SMTPUTF8) and IDNA2008 internationalization support.
// Pure; no I/O; deterministic.
type SyntaxChecker struct{}

func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{}
}

func (c *SyntaxChecker) Check(email parse.Email) SyntaxResult {
	if email.Raw == "" {
		return SyntaxResult{Reason: "empty email address"}
	}
	if !email.Valid {
		return SyntaxResult{Reason: "invalid email syntax"}
	}

	// Length limits (RFC 5321)
	if len(email.Raw) > 254 {
		return SyntaxResult{Reason: "email address exceeds 254 characters"}
	}
	if len(email.Local) > 64 {
		return SyntaxResult{Reason: "local part exceeds 64 octets"}
	}
	if len(email.Domain) > 253 {
		return SyntaxResult{Reason: "domain exceeds 253 octets"}
	}

	// net/mail strips quotes from quoted local parts, so the raw input
	// is what reveals the quoted form.
	if !hasQuotedLocal(email.Raw) {
		if reason := validateLocal(email.Local); reason != "" {
			return SyntaxResult{Reason: reason}
		}
	}

	// Validate the Unicode form for readable error messages; IDNA2008
	// validation already happened during parsing.
	if reason := validateDomain(email.DomainUnicode); reason != "" {
		return SyntaxResult{Reason: reason}
	}

	return SyntaxResult{Valid: true}
}

// hasQuotedLocal checks if the raw address has a quoted local part.
func hasQuotedLocal(raw string) bool {
	at := strings.LastIndex(raw, "@")
	if at < 1 {
		return false
	}
	local := raw[:at]
	return strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`)
}

// validateLocal checks the local part against the RFC 5321 ASCII grammar
// plus RFC 6531 (SMTPUTF8) Unicode characters. Returns a reason, or "".
func validateLocal(local string) string {
	if local == "" {
		return "local part is empty"
	}

	// Quoted form: all printable characters are allowed.
	if strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`) {
		return ""
	}

	// RFC 5321 atext specials besides alphanumerics
	asciiSpecial := "!#$%&'*+/=?^_`{|}~-."

	for _, ch := range local {
		if ch > 127 {
			// RFC 6531: non-ASCII is fine, control characters are not
			if unicode.IsControl(ch) {
				return "local part contains control character"
			}
			continue
		}
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			continue
		}
		if !strings.ContainsRune(asciiSpecial, ch) {
			return "local part contains invalid character: " + string(ch)
		}
	}

	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return "local part cannot start or end with a dot"
	}
	if strings.Contains(local, "..") {
		return "local part cannot contain consecutive dots"
	}

	return ""
}

// validateDomain checks the domain part (Unicode form). Returns a
// reason, or "".
func validateDomain(domain string) string {
	if domain == "" {
		return "domain is empty"
	}

	// IP literal: [127.0.0.1] - accepted, not inspected further
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		return ""
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "domain must have at least two labels"
	}

	for _, label := range labels {
		if label == "" {
			return "domain contains empty label (consecutive dots)"
		}
		if len(label) > 63 {
			return "domain label exceeds 63 characters"
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "domain label cannot start or end with a hyphen"
		}
		for _, ch := range label {
			if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '-' {
				return "domain label contains invalid character: " + string(ch)
			}
		}
	}

	// TLD cannot be all digits
	tld := labels[len(labels)-1]
	allDigits := true
	for _, ch := range tld {
		if !unicode.IsDigit(ch) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return "TLD cannot be all digits"
	}

	return ""
}
