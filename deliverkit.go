// Package deliverkit estimates whether an email address is likely to
// accept mail. It combines syntax validation, MX resolution with a
// shared TTL cache, disposable-domain detection and an optional SMTP
// mailbox probe into a bounded 0-100 deliverability score.
//
// Basic usage:
//
//	v, err := deliverkit.New(deliverkit.DefaultConfig())
//	result := v.Validate(ctx, "user@example.com", false)
//
// With the mailbox probe:
//
//	cfg := deliverkit.DefaultConfig()
//	cfg.SMTP.Enabled = true
//	cfg.SMTP.HeloDomain = "myapp.com"
//	cfg.SMTP.MailFrom = "verify@myapp.com"
//	v, err := deliverkit.New(cfg)
//	result := v.Validate(ctx, "user@example.com", true)
package deliverkit

import "github.com/optimode/deliverkit/types"

// ValidationResult is a re-export from the types package so that
// consumers don't need to import the types package directly.
type ValidationResult = types.ValidationResult

// BatchResult is a re-export.
type BatchResult = types.BatchResult

// MXRecord is a re-export.
type MXRecord = types.MXRecord

// Category and risk constants re-exported.
const (
	CategoryExcellent = types.CategoryExcellent
	CategoryGood      = types.CategoryGood
	CategoryFair      = types.CategoryFair
	CategoryPoor      = types.CategoryPoor
	CategoryInvalid   = types.CategoryInvalid

	RiskLow      = types.RiskLow
	RiskMedium   = types.RiskMedium
	RiskHigh     = types.RiskHigh
	RiskVeryHigh = types.RiskVeryHigh
)
