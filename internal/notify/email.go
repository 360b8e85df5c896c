package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPEmailSender sends email via unauthenticated SMTP (Mailpit-compatible).
type SMTPEmailSender struct {
	addr string
	from string
}

func NewSMTPEmailSender(host, port, from string) *SMTPEmailSender {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@shearbook.local"
	}
	return &SMTPEmailSender{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (s *SMTPEmailSender) ProviderID() string {
	return "email-smtp"
}

func (s *SMTPEmailSender) Send(_ context.Context, msg Message) error {
	if msg.Email == "" {
		return errors.New("message has no email address")
	}

	subject := msg.Subject
	if subject == "" {
		subject = "Your salon appointment"
	}

	body := buildMessage(s.from, msg.Email, subject, msg.Body)
	return smtp.SendMail(s.addr, nil, s.from, []string{msg.Email}, []byte(body))
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
