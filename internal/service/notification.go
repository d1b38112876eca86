package service

import (
	"context"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/repository"
)

const (
	defaultPageSize int32 = 20
	maxPageSize     int32 = 100
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, actor.ID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	return s.noteRepo.MarkAsRead(ctx, id, actor.ID)
}
