package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	SetPushToken(ctx context.Context, id uuid.UUID, token string) error
}

type QuoteRequestRepository interface {
	Create(ctx context.Context, req *domain.QuoteRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.QuoteRequest, error)
	ListOpen(ctx context.Context, filter domain.QuoteRequestFilter) ([]domain.QuoteRequest, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.QuoteRequest, error)
}

type QuoteResponseRepository interface {
	// Create inserts a pending response. It fails with a conflict when the
	// parent request is not open at commit time.
	Create(ctx context.Context, resp *domain.QuoteResponse) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.QuoteResponse, error)
	ListByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]domain.QuoteResponse, error)
	ListByResponder(ctx context.Context, responderID uuid.UUID) ([]domain.QuoteResponse, error)
	// Accept marks the response accepted, rejects its pending siblings and
	// closes the parent request as one atomic unit.
	Accept(ctx context.Context, responseID uuid.UUID, now time.Time) (*domain.AcceptResult, error)
	// ClaimExpiring returns pending responses under open requests whose
	// validity falls in [from, to) and that have not been reminded yet,
	// marking them reminded at now. A response is claimed at most once.
	ClaimExpiring(ctx context.Context, from, to, now time.Time) ([]domain.QuoteResponse, error)
}

// CommunityMutation changes a loaded aggregate in place.
type CommunityMutation func(c *domain.Community) error

type CommunityRepository interface {
	Create(ctx context.Context, c *domain.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Community, error)
	ListVisible(ctx context.Context, actor domain.Actor) ([]domain.Community, error)
	// Mutate locks the community, applies fn, validates the aggregate and
	// persists the result in one transaction.
	Mutate(ctx context.Context, id uuid.UUID, fn CommunityMutation) (*domain.Community, error)
	ListWithPendingBefore(ctx context.Context, before time.Time) ([]domain.Community, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}
