package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"freighthub-backend/internal/logger"
)

type fcmPushService struct {
	client *messaging.Client
}

// NewPushService initializes Firebase Cloud Messaging from a service
// account file.
func NewPushService(ctx context.Context, credentialsFile string) (PushService, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase messaging: %w", err)
	}
	return &fcmPushService{client: client}, nil
}

func (s *fcmPushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	logger.ExternalServiceCall("fcm", "Send", "title", title)

	id, err := s.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		err = fmt.Errorf("failed to send push notification: %w", err)
	}

	logger.ExternalServiceResult("fcm", "Send", err, "messageID", id)
	return err
}

// NoopPushService is used when push delivery is disabled.
type NoopPushService struct{}

func (NoopPushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	logger.DebugContext(ctx, "Push notification skipped", "title", title)
	return nil
}
