package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// Welcome describes a newly onboarded staff member.
type Welcome struct {
	Name     string
	Email    string
	PublicID string
	Role     string
}

// WelcomeNotifier emails staff their login id after onboarding.
type WelcomeNotifier struct {
	mailer     Mailer
	clinicName string
	logger     *logging.Logger
}

// NewWelcomeNotifier sends staff welcome emails through mailer. It returns nil when mailer is nil.
func NewWelcomeNotifier(mailer Mailer, clinicName string, logger *logging.Logger) *WelcomeNotifier {
	if mailer == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(clinicName) == "" {
		clinicName = defaultFromName
	}
	return &WelcomeNotifier{mailer: mailer, clinicName: clinicName, logger: logger}
}

var welcomeHTML = template.Must(template.New("welcome").Parse(
	`<p>Hello {{.Name}},</p>` +
		`<p>You have been added to {{.Clinic}} as a {{.Role}}.</p>` +
		`<p>Your staff ID is <strong>{{.PublicID}}</strong>. Use it with your password to sign in.</p>`))

// StaffWelcome sends the onboarding email. Members without an email are skipped.
func (n *WelcomeNotifier) StaffWelcome(ctx context.Context, w Welcome) error {
	if n == nil || strings.TrimSpace(w.Email) == "" {
		return nil
	}
	var html strings.Builder
	if err := welcomeHTML.Execute(&html, map[string]string{
		"Name":     w.Name,
		"Clinic":   n.clinicName,
		"Role":     strings.ToLower(w.Role),
		"PublicID": w.PublicID,
	}); err != nil {
		return fmt.Errorf("notify: render welcome: %w", err)
	}
	msg := Message{
		To:      w.Email,
		ToName:  w.Name,
		Subject: fmt.Sprintf("Welcome to %s", n.clinicName),
		Text: fmt.Sprintf("Hello %s,\n\nYou have been added to %s as a %s.\nYour staff ID is %s. Use it with your password to sign in.\n",
			w.Name, n.clinicName, strings.ToLower(w.Role), w.PublicID),
		HTML: html.String(),
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.Debug("welcome email queued", "public_id", w.PublicID)
	return nil
}
