package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/likbrus/likbrus.github.io/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: SMTP not configured")

// Message is one outgoing mail. Attachment is optional.
type Message struct {
	To             []string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Mailer sends mail through the configured SMTP relay behind a Breaker.
type Mailer struct {
	from    string
	addr    string
	auth    smtp.Auth
	breaker *Breaker
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from:    cfg.SMTPUser,
		breaker: NewBreaker(BreakerConfig{}),
	}
	if cfg.SMTPHost != "" {
		m.addr = fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

func (m *Mailer) Enabled() bool { return m.addr != "" }

// BreakerState exposes the relay breaker for the health endpoint.
func (m *Mailer) BreakerState() BreakerState { return m.breaker.State() }

func (m *Mailer) Send(msg Message) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	if len(msg.Attachment) > 0 {
		if _, err := e.Attach(bytes.NewReader(msg.Attachment), msg.AttachmentName, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", msg.AttachmentName, err)
		}
	}
	return m.breaker.Do(func() error { return e.Send(m.addr, m.auth) })
}
