package notification

import (
	"context"
	"crypto/tls"

	"gopkg.in/gomail.v2"

	"github.com/frahmantamala/timesheet/internal"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg internal.NotificationConfig) *SMTPSender {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	d := gomail.NewDialer(cfg.SMTPHost, port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return &SMTPSender{dialer: d}
}

// Send dials per message; pending entries are rare enough that a pooled
// connection is not worth keeping open.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	return s.dialer.DialAndSend(m)
}
