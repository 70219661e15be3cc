// Package email delivers transactional email for the counselor platform.
package email

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"counselor_admin_backend/platform/config"
)

const subjectWelcome = "Welcome to the counselor platform"

// Sender delivers counselor-facing email.
type Sender interface {
	// SendCounselorWelcomeEmail greets a newly provisioned counselor.
	SendCounselorWelcomeEmail(ctx context.Context, toEmail, fullName string) error
}

// NewSender returns the configured sender: SMTP when email delivery is
// enabled, otherwise a no-op.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return &NoopSender{}, nil
	}
	if cfg.GetSMTPHost() == "" || cfg.GetEmailFromAddress() == "" {
		return nil, fmt.Errorf("email enabled but SMTP host or from address missing")
	}
	return NewSMTPSender(cfg), nil
}

// NoopSender discards all email. Used when SMTP is not configured.
type NoopSender struct{}

func (s *NoopSender) SendCounselorWelcomeEmail(context.Context, string, string) error {
	return nil
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) SendCounselorWelcomeEmail(ctx context.Context, toEmail, fullName string) error {
	content, err := renderWelcomeEmail(welcomeEmailData{FullName: fullName})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

type welcomeEmailData struct {
	FullName string
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Welcome, {{.FullName}}</h2>
  <p>Your counselor account has been created. You can sign in with the phone
  number you registered with; an OTP will be sent to it on first login.</p>
  <p>If you did not expect this email, please contact support.</p>
</body>
</html>`))

func renderWelcomeEmail(data welcomeEmailData) (string, error) {
	var builder strings.Builder
	if err := welcomeTemplate.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("render welcome email: %w", err)
	}
	return builder.String(), nil
}
