// Package notify sends requester-facing notifications about order changes.
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"servicenow-toolkit/internal/common/errors"
	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/common/metrics"
)

// Notifier delivers a plain-text message to a requester.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// SESService is the slice of the SES client used here, defined for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailNotifier sends notifications through AWS SES.
type EmailNotifier struct {
	ses       SESService
	fromEmail string
	logger    logger.Logger
}

func NewEmailNotifier(sesClient SESService, fromEmail string, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		ses:       sesClient,
		fromEmail: fromEmail,
		logger:    log,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, to, subject, body string) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
		n.logger.Error("failed to send email notification", map[string]interface{}{
			"to":      to,
			"subject": subject,
			"error":   err.Error(),
		})
		return errors.NewNotificationSendFailedError(err)
	}

	metrics.NotificationsSent.WithLabelValues("email", "success").Inc()
	n.logger.Info("email notification sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}
