package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"registration_backend/internal/platform/config"
	httpclient "registration_backend/internal/platform/http"
	"registration_backend/internal/platform/logger"
)

const activationSubject = "Your activation code"

// SESAPI is the subset of the SES v2 client used by SESMailer.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends activation emails through AWS SES.
type SESMailer struct {
	client SESAPI
	from   string
}

// NewSESMailer builds the SES client from configuration.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain applies.
func NewSESMailer(ctx context.Context, cfg config.SESConfig) (*SESMailer, error) {
	if cfg.From == "" {
		return nil, errors.New("ses sender address is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(httpclient.NewHTTPClient(cfg.Timeout)),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return NewSESMailerWithClient(sesv2.NewFromConfig(awsCfg), from), nil
}

// NewSESMailerWithClient wraps an existing SES client.
func NewSESMailerWithClient(client SESAPI, from string) *SESMailer {
	return &SESMailer{client: client, from: from}
}

// SendActivationCode delivers one activation email.
func (m *SESMailer) SendActivationCode(ctx context.Context, to, code string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(activationSubject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(activationText(code)), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("category"), Value: aws.String("activation")},
		},
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}

	messageID := ""
	if out != nil && out.MessageId != nil {
		messageID = *out.MessageId
	}
	slog.InfoContext(ctx, "SES activation email sent", "email", logger.RedactEmail(to), "message_id", messageID)
	return nil
}

func activationText(code string) string {
	return fmt.Sprintf("Your activation code is %s.\n\nEnter it to finish creating your account. "+
		"If you did not sign up, you can ignore this email.\n", code)
}
