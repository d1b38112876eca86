package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/repository"
)

type communityService struct {
	communityRepo repository.CommunityRepository
	notifier      Notifier
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewCommunityService(communityRepo repository.CommunityRepository, notifier Notifier, m *metrics.Metrics) CommunityService {
	return &communityService{
		communityRepo: communityRepo,
		notifier:      notifier,
		metrics:       m,
		now:           time.Now,
	}
}

func (s *communityService) Create(ctx context.Context, actor domain.Actor, in domain.CommunityInput) (*domain.Community, error) {
	logger.EnterMethod("communityService.Create", "actorID", actor.ID, "name", in.Name)

	if err := in.Validate(); err != nil {
		logger.ExitMethodWithError("communityService.Create", err)
		return nil, err
	}
	c := domain.NewCommunity(actor, in, s.now().UTC())
	if err := s.communityRepo.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("communityService.Create", err)
		return nil, fmt.Errorf("create community: %w", err)
	}

	logger.ExitMethod("communityService.Create", "communityID", c.ID)
	return c, nil
}

func (s *communityService) List(ctx context.Context, actor domain.Actor) ([]domain.Community, error) {
	cs, err := s.communityRepo.ListVisible(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return cs, nil
}

func (s *communityService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Community, error) {
	c, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanView(actor) {
		return nil, domain.Forbidden("this community is private")
	}
	return c, nil
}

func (s *communityService) Join(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Community, error) {
	logger.EnterMethod("communityService.Join", "actorID", actor.ID, "communityID", id)

	now := s.now().UTC()
	c, err := s.communityRepo.Mutate(ctx, id, func(c *domain.Community) error {
		return c.Join(actor, now)
	})
	if err != nil {
		logger.ExitMethodWithError("communityService.Join", err, "communityID", id)
		return nil, err
	}

	logger.ExitMethod("communityService.Join", "communityID", id, "members", len(c.Members))
	return c, nil
}

func (s *communityService) RequestJoin(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.JoinRequestInput) (*domain.JoinRequest, error) {
	logger.EnterMethod("communityService.RequestJoin", "actorID", actor.ID, "communityID", id)

	now := s.now().UTC()
	var jr *domain.JoinRequest
	c, err := s.communityRepo.Mutate(ctx, id, func(c *domain.Community) error {
		var err error
		jr, err = c.RequestJoin(actor, in, now)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("communityService.RequestJoin", err, "communityID", id)
		return nil, err
	}

	for _, adminID := range c.Admins() {
		s.notifier.Notify(ctx, &domain.Notification{
			UserID:  adminID,
			Type:    domain.NotificationJoinRequested,
			Title:   "New join request",
			Message: fmt.Sprintf("%s asked to join %s", jr.Name, c.Name),
			Attributes: map[string]string{
				"community_id":    c.ID.String(),
				"join_request_id": jr.ID.String(),
			},
		})
	}

	logger.ExitMethod("communityService.RequestJoin", "communityID", id, "joinRequestID", jr.ID)
	return jr, nil
}

func (s *communityService) ListJoinRequests(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.JoinRequest, error) {
	c, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsAdmin(actor.ID) {
		return nil, domain.Forbidden("only community admins can view join requests")
	}
	out := c.JoinRequests
	if out == nil {
		out = []domain.JoinRequest{}
	}
	return out, nil
}

func (s *communityService) ProcessJoinRequest(ctx context.Context, actor domain.Actor, id, requestID uuid.UUID, action domain.JoinAction) (*domain.JoinRequest, error) {
	logger.EnterMethod("communityService.ProcessJoinRequest", "actorID", actor.ID, "communityID", id, "joinRequestID", requestID, "action", action)

	// Reject a malformed action before touching storage.
	if action != domain.JoinActionApprove && action != domain.JoinActionReject {
		err := domain.BadRequest("action must be approve or reject")
		logger.ExitMethodWithError("communityService.ProcessJoinRequest", err)
		return nil, err
	}

	now := s.now().UTC()
	var jr *domain.JoinRequest
	c, err := s.communityRepo.Mutate(ctx, id, func(c *domain.Community) error {
		var err error
		jr, err = c.ProcessJoinRequest(actor, requestID, action, now)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("communityService.ProcessJoinRequest", err, "communityID", id)
		return nil, err
	}
	s.metrics.IncJoinRequestProcessed(string(action))

	n := &domain.Notification{
		UserID: jr.UserID,
		Attributes: map[string]string{
			"community_id":    c.ID.String(),
			"join_request_id": jr.ID.String(),
		},
	}
	if action == domain.JoinActionApprove {
		n.Type = domain.NotificationJoinApproved
		n.Title = "Join request approved"
		n.Message = fmt.Sprintf("You are now a member of %s", c.Name)
	} else {
		n.Type = domain.NotificationJoinRejected
		n.Title = "Join request declined"
		n.Message = fmt.Sprintf("Your request to join %s was declined", c.Name)
	}
	s.notifier.Notify(ctx, n)

	logger.ExitMethod("communityService.ProcessJoinRequest", "joinRequestID", jr.ID, "status", jr.Status)
	return jr, nil
}

func (s *communityService) Leave(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	logger.EnterMethod("communityService.Leave", "actorID", actor.ID, "communityID", id)

	now := s.now().UTC()
	_, err := s.communityRepo.Mutate(ctx, id, func(c *domain.Community) error {
		return c.Leave(actor, now)
	})
	if err != nil {
		logger.ExitMethodWithError("communityService.Leave", err, "communityID", id)
		return err
	}

	logger.ExitMethod("communityService.Leave", "communityID", id)
	return nil
}
