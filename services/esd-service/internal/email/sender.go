package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"

	mail "github.com/go-mail/mail"
)

// Message is one rendered mail to a single recipient.
type Message struct {
	FromName string
	To       string
	ToName   string
	Subject  string
	HTML     string
	Plain    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// TLS modes understood by SMTPSender.
const (
	TLSAuto = "auto"
	TLSSSL  = "ssl"
	TLSNone = "none"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	TLSMode  string
}

// SMTPSender sends multipart plain/HTML mail over SMTP.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.From = strings.TrimSpace(cfg.From)
	if cfg.From == "" {
		cfg.From = "no-reply@esd.local"
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSAuto
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := newMessage(s.cfg.From, msg)

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}
	switch s.cfg.TLSMode {
	case TLSSSL:
		d.SSL = true
	case TLSNone:
		d.StartTLSPolicy = mail.NoStartTLS
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.Debug("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// newMessage prefers multipart/alternative with the plain part first.
func newMessage(from string, msg Message) *mail.Message {
	m := mail.NewMessage()
	if msg.FromName != "" {
		m.SetAddressHeader("From", from, msg.FromName)
	} else {
		m.SetHeader("From", from)
	}
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Plain != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Plain)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Plain)
	}
	return m
}

// NoopSender logs instead of sending. Used when SMTP_HOST is unset.
type NoopSender struct {
	logger *slog.Logger
}

func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

func (s *NoopSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail not sent (smtp disabled)", "to", msg.To, "subject", msg.Subject)
	return nil
}
