package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"freighthub-backend/internal/logger"
)

type sendGridEmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewEmailService returns a SendGrid-backed mailer, or a log-only mailer
// when no API key is configured.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		logger.Warn("SendGrid API key not set, emails will only be logged")
		return &logEmailService{}
	}
	return &sendGridEmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (s *sendGridEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)

	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), body+emailFooter, "")
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
	} else if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.ExternalServiceResult("sendgrid", "Send", err, "to", toEmail)
	return err
}

const emailFooter = "\n\nBest regards,\nThe FreightHub Team"

type logEmailService struct{}

func (logEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.InfoContext(ctx, "Email (not sent)", "to", toEmail, "name", toName, "subject", subject)
	return nil
}
