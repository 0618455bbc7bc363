// Package notify delivers operator notifications about publish outcomes.
// Email in production, log-only otherwise. Construction is deferred until
// configuration is resolved; callers receive the Notifier by injection.
package notify

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	config "github.com/forepost/api/configs"
)

// Notifier sends a human-readable message to the operator channel.
// Implementations are best-effort: failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}

// New selects the notifier mode from the resolved configuration.
func New(cfg *config.Config) Notifier {
	if cfg.IsProduction() {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			slog.Error("failed to load AWS config, falling back to log notifier", "error", err)
			return &LogNotifier{}
		}
		slog.Info("notifier initialized in email mode", "sender", cfg.SESSender)
		return &SESNotifier{
			client:    sesv2.NewFromConfig(awsCfg),
			sender:    cfg.SESSender,
			recipient: cfg.SESRecipient,
		}
	}
	slog.Info("notifier initialized in log-only mode")
	return &LogNotifier{}
}

// LogNotifier writes notifications to the log stream. Used outside production.
type LogNotifier struct{}

func (n *LogNotifier) Notify(_ context.Context, subject, body string) {
	slog.Info("would send notification email", "subject", subject)
	slog.Info(body)
}

// SESNotifier sends through SES to one fixed sender/recipient pair.
type SESNotifier struct {
	client    *sesv2.Client
	sender    string
	recipient string
}

func (n *SESNotifier) Notify(ctx context.Context, subject, body string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic sending notification", "recovered", r)
		}
	}()

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{n.recipient},
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
	if err != nil {
		slog.Error("failed to send notification email", "subject", subject, "error", err)
		return
	}
	slog.Info("notification email sent", "subject", subject)
}
