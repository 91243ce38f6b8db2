package notify

import (
	"context"

	"servicenow-toolkit/internal/common/aws"
	"servicenow-toolkit/internal/common/config"
	"servicenow-toolkit/internal/common/errors"
	"servicenow-toolkit/internal/common/logger"
)

// FromConfig builds the configured notifier. A nil Notifier with a nil error
// means email notifications are disabled; callers pass that nil straight to
// the services, which skip notification without one.
func FromConfig(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (Notifier, error) {
	if !cfg.Email.Enabled {
		return nil, nil
	}
	if cfg.Email.FromEmail == "" {
		return nil, errors.NewValidationFailedError("notifications.email.from_email is required when email is enabled")
	}

	sesClient, err := aws.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	return NewEmailNotifier(sesClient, cfg.Email.FromEmail, log), nil
}
