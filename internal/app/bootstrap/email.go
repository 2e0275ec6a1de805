package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/clinic-admin-platform/internal/config"
	"github.com/wolfman30/clinic-admin-platform/internal/notify"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// BuildMailer picks the onboarding email transport from EMAIL_PROVIDER.
// Misconfigured providers fall back to the logging mailer.
func BuildMailer(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) notify.Mailer {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if m := notify.NewSendGridMailer(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); m != nil {
			return m
		}
		logger.Warn("SENDGRID_API_KEY missing, onboarding emails will only be logged")
	case "ses":
		if m := notify.NewSESMailer(ses, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); m != nil {
			return m
		}
		logger.Warn("SES client unavailable, onboarding emails will only be logged")
	case "":
	default:
		logger.Warn("unknown EMAIL_PROVIDER, onboarding emails will only be logged", "provider", cfg.EmailProvider)
	}
	return notify.NewLogMailer(logger)
}

// BuildWelcomeNotifier wraps the configured mailer.
func BuildWelcomeNotifier(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) *notify.WelcomeNotifier {
	return notify.NewWelcomeNotifier(BuildMailer(cfg, ses, logger), cfg.EmailFromName, logger)
}
