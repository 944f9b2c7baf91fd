package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"github.com/juniorscv/auth-service/internal/domain"
)

// Config carries SMTP relay settings. Username may be empty for an
// unauthenticated local relay.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer delivers transactional mail over a plain SMTP relay.
type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, email, firstName string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Junior's CV! Your account is ready.\n\nThe Junior's CV team\n",
		firstName,
	)
	return m.send(ctx, email, "Welcome to Junior's CV", body)
}

func (m *SMTPMailer) SendSocialWelcome(ctx context.Context, email, firstName string, provider domain.Provider) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Junior's CV! Your account was created with your %s login, so there is no password to remember.\n\nThe Junior's CV team\n",
		firstName, provider,
	)
	return m.send(ctx, email, "Welcome to Junior's CV", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, pin, firstName string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour password reset PIN is: %s\n\nIt expires in one hour. If you did not request this, you can ignore this message.\n\nThe Junior's CV team\n",
		firstName, pin,
	)
	return m.send(ctx, email, "Your password reset PIN", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	// smtp.SendMail has no context hook; run it in a goroutine and abandon
	// it on cancellation. The OS-level dial timeout still bounds the worst
	// case.
	done := make(chan error, 1)
	go func() { done <- smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
