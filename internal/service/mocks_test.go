package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/repository"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.User), args.Error(1)
}
func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) SetPushToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

// MockQuoteRequestRepo
type MockQuoteRequestRepo struct {
	mock.Mock
}

func (m *MockQuoteRequestRepo) Create(ctx context.Context, req *domain.QuoteRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockQuoteRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuoteRequest), args.Error(1)
}
func (m *MockQuoteRequestRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.QuoteRequest, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.QuoteRequest), args.Error(1)
}
func (m *MockQuoteRequestRepo) ListOpen(ctx context.Context, filter domain.QuoteRequestFilter) ([]domain.QuoteRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.QuoteRequest), args.Error(1)
}
func (m *MockQuoteRequestRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.QuoteRequest, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.QuoteRequest), args.Error(1)
}

// MockQuoteResponseRepo
type MockQuoteResponseRepo struct {
	mock.Mock
}

func (m *MockQuoteResponseRepo) Create(ctx context.Context, resp *domain.QuoteResponse) error {
	args := m.Called(ctx, resp)
	return args.Error(0)
}
func (m *MockQuoteResponseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuoteResponse), args.Error(1)
}
func (m *MockQuoteResponseRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.QuoteResponse, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]domain.QuoteResponse), args.Error(1)
}
func (m *MockQuoteResponseRepo) ListByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]domain.QuoteResponse, error) {
	args := m.Called(ctx, requestIDs)
	return args.Get(0).([]domain.QuoteResponse), args.Error(1)
}
func (m *MockQuoteResponseRepo) ListByResponder(ctx context.Context, responderID uuid.UUID) ([]domain.QuoteResponse, error) {
	args := m.Called(ctx, responderID)
	return args.Get(0).([]domain.QuoteResponse), args.Error(1)
}
func (m *MockQuoteResponseRepo) Accept(ctx context.Context, responseID uuid.UUID, now time.Time) (*domain.AcceptResult, error) {
	args := m.Called(ctx, responseID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AcceptResult), args.Error(1)
}
func (m *MockQuoteResponseRepo) ClaimExpiring(ctx context.Context, from, to, now time.Time) ([]domain.QuoteResponse, error) {
	args := m.Called(ctx, from, to, now)
	return args.Get(0).([]domain.QuoteResponse), args.Error(1)
}

// MockCommunityRepo
type MockCommunityRepo struct {
	mock.Mock
}

func (m *MockCommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCommunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Community), args.Error(1)
}
func (m *MockCommunityRepo) ListVisible(ctx context.Context, actor domain.Actor) ([]domain.Community, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Community), args.Error(1)
}
func (m *MockCommunityRepo) Mutate(ctx context.Context, id uuid.UUID, fn repository.CommunityMutation) (*domain.Community, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Community), args.Error(1)
}
func (m *MockCommunityRepo) ListWithPendingBefore(ctx context.Context, before time.Time) ([]domain.Community, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.Community), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n *domain.Notification) {
	m.Called(ctx, n)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	args := m.Called(ctx, toEmail, toName, subject, body)
	return args.Error(0)
}

// MockPushService
type MockPushService struct {
	mock.Mock
}

func (m *MockPushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}
