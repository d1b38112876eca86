package service

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/repository"
)

type notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
	pushSvc  PushService
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewNotifier fans a notification out to the in-app inbox, email and push.
// emailSvc and pushSvc may be nil to disable a channel.
func NewNotifier(
	noteRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	pushSvc PushService,
	m *metrics.Metrics,
) Notifier {
	return &notifier{
		noteRepo: noteRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		pushSvc:  pushSvc,
		metrics:  m,
		now:      time.Now,
	}
}

// Notify runs after the triggering change has committed. Failures are logged
// and counted, never returned.
func (n *notifier) Notify(ctx context.Context, note *domain.Notification) {
	ctx = context.WithoutCancel(ctx)
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now().UTC()
	}

	err := n.noteRepo.Create(ctx, note)
	n.metrics.ObserveDelivery("in_app", err)
	if err != nil {
		logger.WarnContext(ctx, "Failed to store notification", "userID", note.UserID, "type", note.Type, "error", err)
	}

	if n.emailSvc == nil && n.pushSvc == nil {
		return
	}
	user, err := n.userRepo.GetByID(ctx, note.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.WarnContext(ctx, "Failed to load notification recipient", "userID", note.UserID, "error", err)
		}
		return
	}

	if n.emailSvc != nil && user.Email != "" {
		err := n.emailSvc.Send(ctx, user.Email, user.Name, note.Title, note.Message)
		n.metrics.ObserveDelivery("email", err)
		if err != nil {
			logger.WarnContext(ctx, "Failed to email notification", "userID", note.UserID, "type", note.Type, "error", err)
		}
	}

	if n.pushSvc != nil && user.PushToken != "" {
		data := maps.Clone(note.Attributes)
		if data == nil {
			data = map[string]string{}
		}
		data["type"] = string(note.Type)
		data["notification_id"] = note.ID.String()
		err := n.pushSvc.Send(ctx, user.PushToken, note.Title, note.Message, data)
		n.metrics.ObserveDelivery("push", err)
		if err != nil {
			logger.WarnContext(ctx, "Failed to push notification", "userID", note.UserID, "type", note.Type, "error", err)
		}
	}
}
