package deliverkit

import "github.com/optimode/deliverkit/types"

// Weights are the deliverability score components. The sum is the
// maximum achievable score; with the defaults an address tops out at
// 70 without an SMTP check.
type Weights struct {
	Syntax        int // address parses and passes the grammar
	MX            int // domain has (or implies) a mail host
	NotDisposable int // domain is not a throwaway provider
	Mailbox       int // SMTP probe confirmed the mailbox
}

// DefaultWeights is the canonical 20/30/20/30 split.
func DefaultWeights() Weights {
	return Weights{Syntax: 20, MX: 30, NotDisposable: 20, Mailbox: 30}
}

// Score computes the deliverability score, always clamped to [0,100].
// Pure function of its inputs. Invalid syntax forces 0 regardless of
// the other components. An unknown mailbox verdict contributes nothing
// (it is "not confirmed", not a penalty); a proven-nonexistent mailbox
// subtracts the SMTP weight, since delivery is certain to bounce.
func Score(w Weights, syntaxValid, hasMX, isDisposable bool, mailbox types.Verdict) int {
	if !syntaxValid {
		return 0
	}
	score := w.Syntax
	if hasMX {
		score += w.MX
	}
	if !isDisposable {
		score += w.NotDisposable
	}
	switch mailbox {
	case types.VerdictExists:
		score += w.Mailbox
	case types.VerdictNotExists:
		score -= w.Mailbox
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// CategoryFor maps a score to its category. Bands are closed on the
// lower bound, open above.
func CategoryFor(score int) string {
	switch {
	case score >= 90:
		return types.CategoryExcellent
	case score >= 70:
		return types.CategoryGood
	case score >= 50:
		return types.CategoryFair
	case score >= 1:
		return types.CategoryPoor
	}
	return types.CategoryInvalid
}

// RiskFor maps a category to its risk level.
func RiskFor(category string) string {
	switch category {
	case types.CategoryExcellent:
		return types.RiskLow
	case types.CategoryGood:
		return types.RiskMedium
	case types.CategoryFair:
		return types.RiskHigh
	}
	return types.RiskVeryHigh
}

// recommendations derives actionable notes from the component outcomes.
func recommendations(r *types.ValidationResult) []string {
	var out []string

	if !r.SyntaxValid {
		out = append(out, "Email syntax is invalid. Verify the email format.")
		return out
	}
	if !r.HasMXRecords {
		out = append(out, "Domain has no MX records. Email delivery will fail.")
	}
	if r.IsDisposable {
		out = append(out, "This is a disposable/temporary email. Consider blocking for important communications.")
	}
	if r.Suggestion != "" {
		out = append(out, "Domain looks like a typo of "+r.Suggestion+".")
	}
	if r.SMTPCheckPerformed {
		switch {
		case r.MailboxExists != nil && !*r.MailboxExists:
			out = append(out, "Mailbox does not exist or is not accepting mail.")
		case r.MailboxExists == nil:
			out = append(out, "Could not verify mailbox existence. Server may block verification attempts.")
		}
	}

	switch CategoryFor(r.DeliverabilityScore) {
	case types.CategoryExcellent:
		out = append(out, "Email appears highly deliverable.")
	case types.CategoryGood:
		out = append(out, "Email should be deliverable with low risk.")
	case types.CategoryFair:
		out = append(out, "Email may be deliverable but has some concerns.")
	case types.CategoryPoor:
		out = append(out, "Email has significant deliverability issues.")
	}

	return out
}
