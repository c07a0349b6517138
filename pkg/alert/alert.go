// Package alert delivers operator notifications over SMTP. The circuit
// breaker around the keyword backend uses it to report trips.
package alert

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/soundprediction/retrievo/pkg/config"
)

// Alerter sends an out-of-band notification to operators.
type Alerter interface {
	Alert(subject, message string) error
}

// EmailAlerter implements Alerter using SMTP
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg}
}

// Alert sends an email with the given subject and message
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "To: %s\r\n", strings.Join(a.cfg.To, ","))
	fmt.Fprintf(&body, "Subject: %s\r\n\r\n", subject)
	fmt.Fprintf(&body, "%s\r\n", message)

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)
	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, a.cfg.From, a.cfg.To, []byte(body.String())); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

// NoOpAlerter discards alerts; used when alerting is disabled.
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}
