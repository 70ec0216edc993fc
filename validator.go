package deliverkit

import (
	"context"
	"time"

	"github.com/optimode/deliverkit/check"
	"github.com/optimode/deliverkit/internal/disposable"
	"github.com/optimode/deliverkit/internal/mxdns"
	"github.com/optimode/deliverkit/internal/parse"
	"github.com/optimode/deliverkit/types"
)

// Validator is the validation pipeline: syntax, MX resolution with a
// shared cache, disposable matching, the optional SMTP probe and score
// aggregation. It is safe for concurrent use; the MX cache and the
// disposable snapshot are shared across all requests.
type Validator struct {
	cfg Config

	syntax      *check.SyntaxChecker
	mx          *check.MXChecker
	domain      *check.DomainChecker
	prober      *check.SMTPProber
	disposables *disposable.Set
	gate        *domainGate
}

// New builds a Validator from the configuration. Zero values fall back
// to DefaultConfig. The SMTP probe requires HeloDomain and MailFrom
// when enabled.
func New(cfg Config) (*Validator, error) {
	cfg.normalize()

	if cfg.SMTP.Enabled && (cfg.SMTP.HeloDomain == "" || cfg.SMTP.MailFrom == "") {
		return nil, ErrInvalidSMTPConfig
	}

	resolver := cfg.DNS.Resolver
	if resolver == nil {
		resolver = mxdns.New(mxdns.Config{
			Nameservers: cfg.DNS.Nameservers,
			Timeout:     cfg.DNS.LookupTimeout,
		})
	}

	set := cfg.Domain.Set
	if set == nil {
		set = disposable.NewSet(cfg.Domain.SourceURL)
	}

	return &Validator{
		cfg:    cfg,
		syntax: check.NewSyntaxChecker(),
		mx: check.NewMXChecker(check.MXConfig{
			LookupTimeout: cfg.DNS.LookupTimeout,
			CacheTTL:      cfg.DNS.CacheTTL,
		}, resolver),
		domain: check.NewDomainChecker(check.DomainConfig{
			CheckTypos:    cfg.Domain.CheckTypos,
			TypoThreshold: cfg.Domain.TypoThreshold,
		}, set),
		prober: check.NewSMTPProber(check.SMTPConfig{
			HeloDomain:     cfg.SMTP.HeloDomain,
			MailFrom:       cfg.SMTP.MailFrom,
			ConnectTimeout: cfg.SMTP.ConnectTimeout,
			CommandTimeout: cfg.SMTP.CommandTimeout,
			Port:           cfg.SMTP.Port,
			MaxMXHosts:     cfg.SMTP.MaxMXHosts,
			DetectCatchAll: cfg.SMTP.DetectCatchAll,
			Dial:           cfg.SMTP.Dial,
		}),
		disposables: set,
		gate:        newDomainGate(),
	}, nil
}

// Disposables exposes the shared disposable set so the hosting process
// can refresh it on its own schedule.
func (v *Validator) Disposables() *disposable.Set {
	return v.disposables
}

// Validate runs the full pipeline for one address. Per-address failures
// never surface as errors: every outcome, including DNS timeouts and
// unreachable mail hosts, resolves to a classified result.
func (v *Validator) Validate(ctx context.Context, email string, checkSMTP bool) types.ValidationResult {
	started := time.Now()

	parsed := parse.NewEmail(email)
	res := types.ValidationResult{
		Email:     parsed.Raw,
		CheckedAt: started.UTC(),
	}

	syn := v.syntax.Check(parsed)
	res.SyntaxValid = syn.Valid
	if !syn.Valid {
		return v.finish(&res, types.VerdictUnknown, started)
	}
	res.Domain = parsed.Domain

	// Disposable matching and MX resolution are independent of each
	// other; the matcher never suspends, so it runs inline.
	dom := v.domain.Check(parsed)
	res.IsDisposable = dom.Disposable
	res.Suggestion = dom.Suggestion

	mx := v.mx.Check(ctx, parsed.Domain)
	res.HasMXRecords = mx.HasMX
	res.MXRecords = mx.Records
	if !mx.HasMX && mx.Detail != "" {
		res.DNSError = mx.Detail
	}

	verdict := types.VerdictUnknown
	if checkSMTP && v.cfg.SMTP.Enabled && res.HasMXRecords {
		verdict = v.probe(ctx, parsed, mx.Records, &res)
	}

	return v.finish(&res, verdict, started)
}

// probe runs the mailbox probe under the per-domain gate: at most one
// concurrent probe per destination domain, so many addresses sharing a
// mail server do not trip its abuse defenses.
func (v *Validator) probe(ctx context.Context, parsed parse.Email, records []types.MXRecord, res *types.ValidationResult) types.Verdict {
	release, err := v.gate.acquire(ctx, parsed.Domain)
	if err != nil {
		res.SMTPCheckPerformed = true
		res.SMTPResponse = "probe cancelled: " + err.Error()
		return types.VerdictUnknown
	}
	defer release()

	res.SMTPCheckPerformed = true
	p := v.prober.Probe(ctx, parsed.Address(), parsed.Domain, records)
	res.SMTPResponse = p.Response
	res.IsCatchAll = p.CatchAll
	return p.Verdict
}

// finish aggregates the score and derived fields. Invariants: the score
// is always within [0,100] and validity never depends on the SMTP
// outcome.
func (v *Validator) finish(res *types.ValidationResult, verdict types.Verdict, started time.Time) types.ValidationResult {
	res.MailboxExists = verdict.Bool()
	res.IsValid = res.SyntaxValid && res.HasMXRecords && !res.IsDisposable
	res.DeliverabilityScore = Score(v.cfg.Weights, res.SyntaxValid, res.HasMXRecords, res.IsDisposable, verdict)
	res.ScoreCategory = CategoryFor(res.DeliverabilityScore)
	res.RiskLevel = RiskFor(res.ScoreCategory)
	res.Recommendations = recommendations(res)
	res.ProcessingTimeMS = float64(time.Since(started).Microseconds()) / 1000
	return *res
}
