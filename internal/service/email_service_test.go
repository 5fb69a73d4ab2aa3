package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyregistry/internal/config"
	"familyregistry/internal/models"
	"familyregistry/internal/testhelpers"
)

type fakeSES struct {
	sent []*sesv2.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestDisabledEmailServiceSkipsSending(t *testing.T) {
	svc, err := NewEmailService(context.Background(), config.EmailConfig{}, "http://localhost:5000", false)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	family := testhelpers.NewFamily("shah@example.com", "1980-05-10")
	assert.NoError(t, svc.SendRegistrationReceived(context.Background(), family))
	assert.NoError(t, svc.SendStatusChanged(context.Background(), family))
}

func TestSendRegistrationReceived(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, config.EmailConfig{FromEmail: "registry@example.com", FromName: "Registry"}, "http://localhost:5000", false)

	family := testhelpers.NewFamily("shah@example.com", "1980-05-10")
	family.FamilyHead = "Shah <Family>"
	require.NoError(t, svc.SendRegistrationReceived(context.Background(), family))

	require.Len(t, ses.sent, 1)
	sent := ses.sent[0]
	assert.Equal(t, "Registry <registry@example.com>", aws.ToString(sent.FromEmailAddress))
	assert.Equal(t, []string{"shah@example.com"}, sent.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(sent.Content.Simple.Body.Html.Data), "Shah &lt;Family&gt;")
}

func TestSendStatusChanged(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, config.EmailConfig{FromEmail: "registry@example.com"}, "https://registry.example.com", false)
	family := testhelpers.NewFamily("shah@example.com", "1980-05-10")

	family.Status = models.StatusApproved
	require.NoError(t, svc.SendStatusChanged(context.Background(), family))
	family.Status = models.StatusRejected
	require.NoError(t, svc.SendStatusChanged(context.Background(), family))
	family.Status = models.StatusPending
	require.NoError(t, svc.SendStatusChanged(context.Background(), family))

	require.Len(t, ses.sent, 2)
	assert.Contains(t, aws.ToString(ses.sent[0].Content.Simple.Body.Text.Data), "https://registry.example.com/login")
	assert.Contains(t, aws.ToString(ses.sent[1].Content.Simple.Subject.Data), "not approved")
}

func TestSendEmailSkipsFamilyWithoutAddress(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, config.EmailConfig{FromEmail: "registry@example.com"}, "", false)

	family := testhelpers.NewFamily("", "1980-05-10")
	require.NoError(t, svc.SendRegistrationReceived(context.Background(), family))
	assert.Empty(t, ses.sent)
}

func TestSendEmailWrapsFailure(t *testing.T) {
	svc := newEmailService(&fakeSES{err: errors.New("throttled")}, config.EmailConfig{FromEmail: "registry@example.com"}, "", false)

	err := svc.SendRegistrationReceived(context.Background(), testhelpers.NewFamily("shah@example.com", "1980-05-10"))
	assert.ErrorContains(t, err, "throttled")
}
