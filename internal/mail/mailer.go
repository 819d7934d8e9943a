// Package mail wraps the SMTP transport behind a Sender interface so the
// dispatch worker can record any transport failure as a failed status instead
// of propagating it.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message or returns an error.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig carries the transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	cfg  SMTPConfig
	addr string
}

// NewSMTPSender constructs the sender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)}
}

// Send delivers the message. Context cancellation is honoured before the
// dial; the SMTP exchange itself is bounded by the relay's timeouts.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: message has no recipients")
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = msg.To
	e.Subject = msg.Subject
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	if err := e.Send(s.addr, auth); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
