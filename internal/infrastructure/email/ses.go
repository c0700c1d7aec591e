// Package email is the transactional mail adapter.
package email

import (
	"context"
	"fmt"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/metrics"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"
)

// SESMailer sends plain-text mail through Amazon SES.
type SESMailer struct {
	client *sesv2.Client
	from   string
	logger zerolog.Logger
}

var _ ports.Mailer = (*SESMailer)(nil)

// NewSESMailer creates a mailer sending from the given verified address.
func NewSESMailer(client *sesv2.Client, from string, logger zerolog.Logger) *SESMailer {
	return &SESMailer{client: client, from: from, logger: logger}
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	metrics.ObserveUpstream("ses", err)
	if err != nil {
		m.logger.Error().Err(err).Str("to", to).Msg("Failed to send email")
		return fmt.Errorf("ses send: %w", domain.ErrUpstreamUnavailable)
	}
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}
