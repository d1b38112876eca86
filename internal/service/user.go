package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: time.Now}
}

// GetProfile returns the stored profile, or an empty one carrying only the
// identity when the user has not filled it in yet.
func (s *userService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.User{ID: actor.ID, Role: actor.Role}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor domain.Actor, in domain.ProfileInput) (*domain.User, error) {
	logger.EnterMethod("userService.UpdateProfile", "actorID", actor.ID, "kind", in.Kind)

	if err := in.Validate(actor.Role); err != nil {
		logger.ExitMethodWithError("userService.UpdateProfile", err)
		return nil, err
	}
	u, err := s.GetProfile(ctx, actor)
	if err != nil {
		logger.ExitMethodWithError("userService.UpdateProfile", err)
		return nil, err
	}
	in.Apply(u)
	u.UpdatedAt = s.now().UTC()
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		logger.ExitMethodWithError("userService.UpdateProfile", err)
		return nil, fmt.Errorf("save profile: %w", err)
	}

	logger.ExitMethod("userService.UpdateProfile", "actorID", actor.ID)
	return u, nil
}

func (s *userService) RegisterPushToken(ctx context.Context, actor domain.Actor, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError("token")
	}
	return s.userRepo.SetPushToken(ctx, actor.ID, token)
}
