// Package email formats overstay alerts and sends them over SMTP.
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/evcraddock/gatekeeper/internal/duration"
	"github.com/evcraddock/gatekeeper/internal/overstay"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// OverstaySubject returns the subject line for an overstay alert.
func OverstaySubject(community string, s overstay.Summary) string {
	if crit := s.BySeverity[overstay.SeverityCritical]; crit > 0 {
		return fmt.Sprintf("[%s] %d visitors overstaying (%d critical)", community, s.Overstaying, crit)
	}
	return fmt.Sprintf("[%s] %d visitors overstaying", community, s.Overstaying)
}

// FormatOverstay builds a plain-text alert listing overstaying visitors,
// worst first. Visitors within their limit are left out.
func FormatOverstay(community string, evals []overstay.Evaluation, now time.Time) string {
	var buf bytes.Buffer
	s := overstay.Summarize(evals)

	fmt.Fprintf(&buf, "Gate report for %s at %s\n\n", community, now.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(&buf, "%d inside, %d past their limit.\n\n", s.Inside, s.Overstaying)

	n := 0
	for _, e := range evals {
		if !e.Overstaying || e.Visitor == nil {
			continue
		}
		n++
		v := e.Visitor

		fmt.Fprintf(&buf, "%d. %s (%s) %s\n", n, v.DisplayName(), v.Type().Label(), e.Severity.Label())

		details := []string{
			"inside " + duration.Format(e.Elapsed),
			"limit " + duration.Format(e.Limit),
			"over by " + duration.Format(e.Overstay),
		}
		fmt.Fprintf(&buf, "   %s\n", strings.Join(details, " | "))

		if v.Flat != "" {
			fmt.Fprintf(&buf, "   Flat %s\n", v.Flat)
		}
		if v.Phone != "" {
			fmt.Fprintf(&buf, "   Phone %s\n", v.Phone)
		}
		if v.CheckInAt != nil {
			fmt.Fprintf(&buf, "   Checked in %s\n", v.CheckInAt.Local().Format("15:04"))
		}

		fmt.Fprintln(&buf)
	}

	if n == 0 {
		fmt.Fprintln(&buf, "Nobody is overstaying.")
	}

	return buf.String()
}

// buildMessage assembles the raw RFC 5322 message.
func buildMessage(from string, to []string, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from,
		strings.Join(to, ", "),
		subject,
		body,
	)
}

// Send sends an email via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS).
func Send(cfg SMTPConfig, to []string, subject, body string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := buildMessage(cfg.From, to, subject, body)
	addr := cfg.Host + ":" + cfg.Port

	if cfg.Port == "465" {
		return sendImplicitTLS(cfg, addr, to, msg)
	}
	return sendSTARTTLS(cfg, addr, to, msg)
}

// sendImplicitTLS connects over TLS directly (port 465/SMTPS).
func sendImplicitTLS(cfg SMTPConfig, addr string, to []string, msg string) (err error) {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil && err == nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}

// sendSTARTTLS connects plain then upgrades to TLS (port 587).
func sendSTARTTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
