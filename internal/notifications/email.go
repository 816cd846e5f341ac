package notifications

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Configured reports whether enough is set to attempt delivery.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender delivers plain-text mail over SMTP.
type EmailSender struct {
	config   EmailConfig
	sendMail sendMailFunc
}

func NewEmailSender(config EmailConfig) *EmailSender {
	return &EmailSender{config: config, sendMail: smtp.SendMail}
}

func (s *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	if !s.config.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	port := s.config.Port
	if port == 0 {
		port = 587
	}

	var auth smtp.Auth
	if s.config.User != "" {
		auth = smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.config.Host, port)
	return s.sendMail(addr, auth, s.config.From, []string{to}, BuildMessage(s.config, to, subject, body))
}

// BuildMessage renders the RFC 5322 message with an encoded subject.
func BuildMessage(config EmailConfig, to, subject, body string) []byte {
	from := config.From
	if config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", config.FromName), config.From)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
