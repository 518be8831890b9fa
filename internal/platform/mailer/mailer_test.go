package mailer

import (
	"bytes"
	"context"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registration_backend/internal/platform/config"
)

type mockSESClient struct {
	SendEmailFunc func(in *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error)
	inputs        []*sesv2.SendEmailInput
}

func (m *mockSESClient) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(in)
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_SendActivationCode(t *testing.T) {
	t.Parallel()

	client := &mockSESClient{}
	m := NewSESMailerWithClient(client, "Accounts <no-reply@example.com>")

	err := m.SendActivationCode(context.Background(), "alice@example.com", "0482")
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "Accounts <no-reply@example.com>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"alice@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, activationSubject, aws.ToString(in.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Text.Data), "0482")
}

func TestSESMailer_SendError(t *testing.T) {
	t.Parallel()

	client := &mockSESClient{
		SendEmailFunc: func(*sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected")
		},
	}
	m := NewSESMailerWithClient(client, "no-reply@example.com")

	err := m.SendActivationCode(context.Background(), "alice@example.com", "0482")
	assert.ErrorContains(t, err, "MessageRejected")
}

func TestNewSESMailer(t *testing.T) {
	t.Parallel()

	_, err := NewSESMailer(context.Background(), config.SESConfig{Region: "us-west-2"})
	assert.Error(t, err, "sender address is required")

	m, err := NewSESMailer(context.Background(), config.SESConfig{
		Region:    "us-west-2",
		AccessKey: "AKIATEST",
		SecretKey: "secret",
		From:      "no-reply@example.com",
		FromName:  "Accounts",
	})
	require.NoError(t, err)
	assert.Equal(t, "Accounts <no-reply@example.com>", m.from)
	assert.NotNil(t, m.client)
}

// AWS_CA_BUNDLE が設定されていても SES クライアントを構築できること
func TestNewSESMailer_CustomCABundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, pemBytes, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	m, err := NewSESMailer(context.Background(), config.SESConfig{
		Region:    "us-west-2",
		AccessKey: "AKIATEST",
		SecretKey: "secret",
		From:      "no-reply@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, m.client)
}

func TestLogMailer_SendActivationCode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewLogMailer(&buf)

	require.NoError(t, m.SendActivationCode(context.Background(), "a@x.com", "4821"))

	out := buf.String()
	assert.Contains(t, out, "ACTIVATION CODE EMAIL")
	assert.Contains(t, out, "To: a@x.com")
	assert.Contains(t, out, "Activation Code: 4821")
}
