package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAlertService emails an operator address when a client key is blocked by
// the lockout policy. Purely informational; login throttling does not depend
// on it.
type SESAlertService struct {
	sesClient *ses.Client
	from      string
	to        string
	logger    *slog.Logger
}

// NewSESAlertService creates an SES-backed lockout notifier.
func NewSESAlertService(region, from, to string, logger *slog.Logger) (*SESAlertService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESAlertService{
		sesClient: ses.NewFromConfig(cfg),
		from:      from,
		to:        to,
		logger:    logger,
	}, nil
}

// NotifyLockout sends the lockout alert for a blocked client.
func (s *SESAlertService) NotifyLockout(ctx context.Context, clientIP string) error {
	body := fmt.Sprintf(
		"Client %s was blocked by the admin login lockout policy at %s after repeated failed attempts.\n\n"+
			"No action is required; the block expires automatically.\n",
		clientIP, time.Now().UTC().Format(time.RFC3339),
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{s.to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Admin login lockout triggered"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send lockout alert: %w", err)
	}

	s.logger.Info("lockout alert sent", slog.String("ip_address", clientIP))
	return nil
}
