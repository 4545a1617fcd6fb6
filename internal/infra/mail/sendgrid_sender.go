// Package mail contains the SendGrid-backed implementation of the MailSender
// domain service.
package mail

import (
	"context"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/fx"

	"boutique/config"
	"boutique/internal/domain/service"
	"boutique/internal/errors"
)

// SenderParams defines the required parameters
type SenderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// sendgridSender implements service.MailSender using the SendGrid API.
type sendgridSender struct {
	apiKey     string
	fromEmail  string
	senderName string
	logger     *slog.Logger
}

// NewSendGridSender is the constructor for sendgridSender.
func NewSendGridSender(params SenderParams) (service.MailSender, error) {
	cfg := params.Config.Mail
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("sendgrid api key must be provided")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address must be provided")
	}

	return &sendgridSender{
		apiKey:     cfg.APIKey,
		fromEmail:  cfg.From,
		senderName: cfg.SenderName,
		logger:     params.Logger,
	}, nil
}

// Send delivers a single transactional email.
func (s *sendgridSender) Send(ctx context.Context, msg service.MailMessage) error {
	from := sgmail.NewEmail(s.senderName, s.fromEmail)
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, "", msg.HTMLBody)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return errors.Wrap(err, "sendgrid send")
	}

	if response.StatusCode >= 400 {
		s.logger.LogAttrs(ctx, slog.LevelError, "sendgrid send failed",
			slog.Int("status", response.StatusCode),
			slog.String("subject", msg.Subject),
		)

		return errors.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "mail sent",
		slog.Int("status", response.StatusCode),
		slog.String("subject", msg.Subject),
	)

	return nil
}
