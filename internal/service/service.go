package service

import (
	"context"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
)

// Every operation takes the authenticated actor explicitly; services never
// read identity from the context.

type QuoteRequestService interface {
	Create(ctx context.Context, actor domain.Actor, in domain.QuoteRequestInput) (*domain.QuoteRequest, error)
	ListOpen(ctx context.Context, actor domain.Actor, filter domain.QuoteRequestFilter) ([]domain.QuoteRequestView, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.QuoteRequestView, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.QuoteRequestView, error)
}

type QuoteResponseService interface {
	Create(ctx context.Context, actor domain.Actor, requestID uuid.UUID, in domain.QuoteResponseInput) (*domain.QuoteResponse, error)
	ListForRequest(ctx context.Context, actor domain.Actor, requestID uuid.UUID) ([]domain.QuoteResponseView, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.QuoteResponseView, error)
	Accept(ctx context.Context, actor domain.Actor, responseID uuid.UUID) (*domain.AcceptResult, error)
}

type CommunityService interface {
	Create(ctx context.Context, actor domain.Actor, in domain.CommunityInput) (*domain.Community, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Community, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Community, error)
	Join(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Community, error)
	RequestJoin(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.JoinRequestInput) (*domain.JoinRequest, error)
	ListJoinRequests(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.JoinRequest, error)
	ProcessJoinRequest(ctx context.Context, actor domain.Actor, id, requestID uuid.UUID, action domain.JoinAction) (*domain.JoinRequest, error)
	Leave(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type UserService interface {
	GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, in domain.ProfileInput) (*domain.User, error)
	RegisterPushToken(ctx context.Context, actor domain.Actor, token string) error
}

type NotificationService interface {
	List(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

// Notifier delivers a notification to one user on every channel available
// for them. Delivery is best effort and never returns an error.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification)
}

type EmailService interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

type PushService interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
