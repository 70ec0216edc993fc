package check

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/optimode/deliverkit/internal/smtpconn"
	"github.com/optimode/deliverkit/types"
)

// SMTPConfig is the mailbox probe configuration.
type SMTPConfig struct {
	HeloDomain     string
	MailFrom       string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration // bounds each command/response exchange
	Port           string
	// MaxMXHosts is how many MX hosts to try in priority order. Default: 3
	MaxMXHosts int
	// DetectCatchAll probes a nonexistent local part after a positive
	// verdict; acceptance downgrades the verdict to unknown.
	DetectCatchAll bool
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// ProbeResult is the outcome of the SMTP stage.
type ProbeResult struct {
	Verdict  types.Verdict
	Response string // last SMTP response or network diagnostic
	Code     int    // RCPT TO response code, 0 when never reached
	Host     string // MX host that produced the verdict
	CatchAll *bool  // nil when not determined
}

// SMTPProber verifies mailbox existence with a non-delivering handshake:
// Connect, EHLO/HELO, MAIL FROM, RCPT TO, Quit. It never enters the
// message-body phase, and every attempt's socket is released on every
// exit path. Connection-tier failures move to the next MX host;
// application-tier rejections are final.
type SMTPProber struct {
	cfg SMTPConfig
}

func NewSMTPProber(cfg SMTPConfig) *SMTPProber {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.MaxMXHosts == 0 {
		cfg.MaxMXHosts = 3
	}
	return &SMTPProber{cfg: cfg}
}

// Probe runs the handshake against the MX hosts in priority order.
// addr is the address to verify; domain is its A-label domain, used for
// the catch-all nonce.
func (p *SMTPProber) Probe(ctx context.Context, addr, domain string, records []types.MXRecord) ProbeResult {
	maxHosts := p.cfg.MaxMXHosts
	if maxHosts > len(records) {
		maxHosts = len(records)
	}

	lastDiag := "no MX hosts to probe"
	for i := 0; i < maxHosts; i++ {
		select {
		case <-ctx.Done():
			return ProbeResult{Verdict: types.VerdictUnknown, Response: "probe cancelled: " + ctx.Err().Error()}
		default:
		}

		host := strings.TrimSuffix(records[i].Host, ".")
		res, next := p.probeHost(addr, domain, host)
		if !next {
			return res
		}
		lastDiag = res.Response
	}

	return ProbeResult{Verdict: types.VerdictUnknown, Response: lastDiag}
}

// probeHost runs one attempt against one host. next reports whether the
// failure was connection-tier, in which case the caller tries the next
// host in priority order.
func (p *SMTPProber) probeHost(addr, domain, host string) (ProbeResult, bool) {
	sess, err := smtpconn.Dial(smtpconn.Config{
		HeloDomain:     p.cfg.HeloDomain,
		ConnectTimeout: p.cfg.ConnectTimeout,
		CommandTimeout: p.cfg.CommandTimeout,
		Port:           p.cfg.Port,
		Dial:           p.cfg.Dial,
	}, host)
	if err != nil {
		return ProbeResult{
			Verdict:  types.VerdictUnknown,
			Response: fmt.Sprintf("%s: %v", host, err),
			Host:     host,
		}, true
	}
	defer sess.Close()

	code, msg, err := sess.Mail(p.cfg.MailFrom)
	if err != nil {
		return ProbeResult{
			Verdict:  types.VerdictUnknown,
			Response: fmt.Sprintf("%s: MAIL FROM: %v", host, err),
			Host:     host,
		}, true
	}
	if code >= 400 {
		// Server refuses to take a sender from us; treat like an
		// unusable host and move on.
		sess.Quit()
		return ProbeResult{
			Verdict:  types.VerdictUnknown,
			Response: fmt.Sprintf("%s: MAIL FROM rejected: %d %s", host, code, msg),
			Code:     code,
			Host:     host,
		}, true
	}

	code, msg, err = sess.Rcpt(addr)
	if err != nil {
		return ProbeResult{
			Verdict:  types.VerdictUnknown,
			Response: fmt.Sprintf("%s: RCPT TO: %v", host, err),
			Host:     host,
		}, true
	}

	res := ProbeResult{
		Response: fmt.Sprintf("%d %s", code, msg),
		Code:     code,
		Host:     host,
	}

	switch {
	case code >= 500:
		// Permanent rejection: the mailbox does not exist.
		res.Verdict = types.VerdictNotExists
		sess.Quit()
		return res, false
	case code >= 400:
		// Temporary condition. Not retried against the same host to
		// avoid abuse signatures, and an application-tier answer means
		// the next host would say the same.
		res.Verdict = types.VerdictUnknown
		sess.Quit()
		return res, false
	}

	res.Verdict = types.VerdictExists

	if p.cfg.DetectCatchAll {
		if catchAll, ok := p.checkCatchAll(sess, domain); ok {
			res.CatchAll = &catchAll
			if catchAll {
				// Acceptance carries no evidential value on a catch-all.
				res.Verdict = types.VerdictUnknown
				res.Response += " (catch-all domain)"
			}
		}
	}

	sess.Quit()
	return res, false
}

// checkCatchAll sends a second RCPT for a local part that cannot exist.
// ok is false when the session died before answering, leaving the
// catch-all state undetermined.
func (p *SMTPProber) checkCatchAll(sess *smtpconn.Session, domain string) (catchAll, ok bool) {
	nonce := "nonexistent-" + strings.ToLower(ulid.Make().String())
	code, _, err := sess.Rcpt(nonce + "@" + domain)
	if err != nil {
		return false, false
	}
	return code >= 200 && code < 300, true
}
