package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicenow-toolkit/internal/common/errors"
	"servicenow-toolkit/internal/common/logger"
)

type mockSESService struct {
	sendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *mockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.sendEmailFunc(ctx, params, optFns...)
}

func TestEmailNotifier_Notify(t *testing.T) {
	mock := &mockSESService{
		sendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "requester@example.com", params.Destination.ToAddresses[0])
			assert.Equal(t, "noreply@example.com", *params.Source)
			assert.Equal(t, "Order cancelled", *params.Message.Subject.Data)
			return &ses.SendEmailOutput{}, nil
		},
	}

	n := NewEmailNotifier(mock, "noreply@example.com", logger.NewTestLogger(t))
	err := n.Notify(context.Background(), "requester@example.com", "Order cancelled", "Your order REQ0010001 was cancelled.")

	require.NoError(t, err)
	assert.Equal(t, 1, mock.calls)
}

func TestEmailNotifier_NotifySendFailure(t *testing.T) {
	mock := &mockSESService{
		sendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, fmt.Errorf("ses unavailable")
		},
	}

	n := NewEmailNotifier(mock, "noreply@example.com", logger.NewTestLogger(t))
	err := n.Notify(context.Background(), "requester@example.com", "Order cancelled", "body")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotificationSendFailed))
}
