// Package types contains the shared types for deliverkit.
// This package does not import anything from other deliverkit packages
// to avoid circular imports.
package types

import "time"

// MXRecord is a single mail-exchanger record. A domain's records are
// kept sorted ascending by Priority (lower is more preferred), with
// ties broken by Host for determinism.
type MXRecord struct {
	Host     string `json:"host"`
	Priority uint16 `json:"priority"`
}

// Verdict is the tri-state outcome of an SMTP mailbox probe.
type Verdict int

const (
	// VerdictUnknown means the probe was inconclusive: temporary failure,
	// timeout, catch-all downgrade, or no probe performed.
	VerdictUnknown Verdict = iota
	// VerdictExists means the server accepted RCPT TO for the address.
	VerdictExists
	// VerdictNotExists means the server permanently rejected the address.
	VerdictNotExists
)

// Bool maps the verdict onto the nullable boolean wire form:
// nil for unknown, otherwise a pointer to true/false.
func (v Verdict) Bool() *bool {
	switch v {
	case VerdictExists:
		b := true
		return &b
	case VerdictNotExists:
		b := false
		return &b
	}
	return nil
}

// Score categories. Each band is closed on its lower bound.
const (
	CategoryExcellent = "Excellent" // [90,100]
	CategoryGood      = "Good"      // [70,89]
	CategoryFair      = "Fair"      // [50,69]
	CategoryPoor      = "Poor"      // [1,49]
	CategoryInvalid   = "Invalid"   // 0
)

// Risk levels, one per score category.
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
)

// ValidationResult is the full outcome of validating one address.
// Invariants: DeliverabilityScore is always in [0,100], and
// IsValid == SyntaxValid && HasMXRecords && !IsDisposable regardless
// of the SMTP outcome.
type ValidationResult struct {
	Email       string `json:"email"`
	IsValid     bool   `json:"is_valid"`
	SyntaxValid bool   `json:"syntax_valid"`

	Domain       string     `json:"domain"`
	HasMXRecords bool       `json:"has_mx_records"`
	MXRecords    []MXRecord `json:"mx_records,omitempty"`
	DNSError     string     `json:"dns_error,omitempty"`

	IsDisposable bool   `json:"is_disposable"`
	Suggestion   string `json:"suggestion,omitempty"`

	SMTPCheckPerformed bool   `json:"smtp_check_performed"`
	MailboxExists      *bool  `json:"mailbox_exists"`
	SMTPResponse       string `json:"smtp_response,omitempty"`
	IsCatchAll         *bool  `json:"is_catch_all,omitempty"`

	DeliverabilityScore int      `json:"deliverability_score"`
	ScoreCategory       string   `json:"score_category"`
	RiskLevel           string   `json:"risk_level"`
	Recommendations     []string `json:"recommendations,omitempty"`

	CheckedAt        time.Time `json:"checked_at"`
	ProcessingTimeMS float64   `json:"processing_time_ms"`
}

// BatchResult is an ordered sequence of per-address results.
// Results has the same length and order as the batch input.
// ProcessingTimeMS is the wall-clock span of the whole batch,
// not the sum of per-item times.
type BatchResult struct {
	TotalChecked     int                `json:"total_checked"`
	Results          []ValidationResult `json:"results"`
	ProcessingTimeMS float64            `json:"processing_time_ms"`
}
