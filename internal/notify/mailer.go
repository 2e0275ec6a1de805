// Package notify delivers transactional email to clinic staff.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

const defaultFromName = "Clinic Admin"

// Mailer sends one email. Implementations are interchangeable.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// sendGridClient is the subset of *sendgrid.Client used here.
type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*sendGridResponse, error)
}

type sendGridResponse struct {
	StatusCode int
	Body       string
}

type sendGridAdapter struct {
	client *sendgrid.Client
}

func (a sendGridAdapter) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*sendGridResponse, error) {
	resp, err := a.client.SendWithContext(ctx, email)
	if err != nil {
		return nil, err
	}
	return &sendGridResponse{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client    sendGridClient
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig configures SendGridMailer.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridMailer returns nil without an API key.
func NewSendGridMailer(cfg SendGridConfig, logger *logging.Logger) *SendGridMailer {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridMailer{
		client:    sendGridAdapter{client: sendgrid.NewSendClient(cfg.APIKey)},
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	email := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.Text, html)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected email", "status", resp.StatusCode, "body", resp.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}
	s.logger.Info("email sent", "provider", "sendgrid", "to", msg.To, "status", resp.StatusCode)
	return nil
}

// LogMailer logs emails instead of sending them. It keeps the last messages
// for inspection.
type LogMailer struct {
	logger *logging.Logger

	mu   sync.Mutex
	sent []Message
}

func NewLogMailer(logger *logging.Logger) *LogMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, msg Message) error {
	l.mu.Lock()
	l.sent = append(l.sent, msg)
	l.mu.Unlock()
	l.logger.Info("email delivery disabled; logged only", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of the logged messages.
func (l *LogMailer) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.sent))
	copy(out, l.sent)
	return out
}

var (
	_ Mailer = (*SendGridMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
