// Package smtpconn implements the minimal SMTP client conversation used by
// mailbox probes: connect, EHLO/HELO, MAIL FROM, RCPT TO, QUIT. A Session
// owns its socket exclusively; it never reaches the message-body phase and
// is closed on every exit path.
package smtpconn

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Config configures a probe session.
type Config struct {
	HeloDomain     string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration // bounds each command/response exchange
	Port           string
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// Session is one SMTP conversation with a single mail host.
type Session struct {
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	closed bool
}

// Dial connects to the host, reads the banner and greets with EHLO,
// falling back to HELO for servers that reject the extended greeting.
// On any error the connection is already closed when Dial returns.
func Dial(cfg Config, host string) (*Session, error) {
	if cfg.Dial == nil {
		cfg.Dial = net.DialTimeout
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}

	address := net.JoinHostPort(host, cfg.Port)
	conn, err := cfg.Dial("tcp", address, cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", address, err)
	}

	s := &Session{
		cfg:    cfg,
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}

	code, msg, err := s.read()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("read banner: %w", err)
	}
	if code != 220 {
		s.Close()
		return nil, fmt.Errorf("server rejected connection: %d %s", code, msg)
	}

	code, msg, err = s.command("EHLO " + cfg.HeloDomain)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("EHLO failed: %w", err)
	}
	if code >= 400 {
		code, msg, err = s.command("HELO " + cfg.HeloDomain)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("HELO failed: %w", err)
		}
		if code >= 400 {
			s.Close()
			return nil, fmt.Errorf("greeting rejected: %d %s", code, msg)
		}
	}

	return s, nil
}

// Mail sends MAIL FROM with the given sender.
func (s *Session) Mail(from string) (int, string, error) {
	return s.command(fmt.Sprintf("MAIL FROM:<%s>", from))
}

// Rcpt sends RCPT TO for the given address. The response code is the
// probe verdict; the caller interprets it.
func (s *Session) Rcpt(addr string) (int, string, error) {
	return s.command(fmt.Sprintf("RCPT TO:<%s>", addr))
}

// Quit sends QUIT best-effort and closes the connection. Safe to call
// multiple times.
func (s *Session) Quit() {
	if s.closed {
		return
	}
	_ = s.conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, _ = s.writer.WriteString("QUIT\r\n")
	_ = s.writer.Flush()
	s.Close()
}

// Close releases the socket without the QUIT courtesy. Safe to call
// multiple times.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.Close()
}

// command sends one SMTP command and reads the response, bounding the
// whole exchange by CommandTimeout.
func (s *Session) command(cmd string) (int, string, error) {
	if err := s.conn.SetDeadline(time.Now().Add(s.cfg.CommandTimeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}
	if _, err := s.writer.WriteString(cmd + "\r\n"); err != nil {
		return 0, "", err
	}
	if err := s.writer.Flush(); err != nil {
		return 0, "", err
	}
	return s.read()
}

// read consumes a (possibly multi-line) SMTP response.
func (s *Session) read() (code int, full string, err error) {
	if err := s.conn.SetDeadline(time.Now().Add(s.cfg.CommandTimeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}

	var lines []string
	for {
		line, readErr := s.reader.ReadString('\n')
		if readErr != nil {
			return 0, "", fmt.Errorf("read SMTP response: %w", readErr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("SMTP response line too short")
		}
		lines = append(lines, line)
		// A '-' after the code marks a continuation line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	lastLine := lines[len(lines)-1]
	if _, err := fmt.Sscanf(lastLine[:3], "%d", &code); err != nil {
		return 0, "", fmt.Errorf("invalid SMTP response code %q: %w", lastLine[:3], err)
	}
	return code, strings.Join(lines, " | "), nil
}
