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

type quoteRequestService struct {
	requestRepo  repository.QuoteRequestRepository
	responseRepo repository.QuoteResponseRepository
	userRepo     repository.UserRepository
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewQuoteRequestService(
	requestRepo repository.QuoteRequestRepository,
	responseRepo repository.QuoteResponseRepository,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
) QuoteRequestService {
	return &quoteRequestService{
		requestRepo:  requestRepo,
		responseRepo: responseRepo,
		userRepo:     userRepo,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *quoteRequestService) Create(ctx context.Context, actor domain.Actor, in domain.QuoteRequestInput) (*domain.QuoteRequest, error) {
	logger.EnterMethod("quoteRequestService.Create", "actorID", actor.ID)

	if actor.Role != domain.RoleCompany {
		err := domain.Forbidden("only companies can create quote requests")
		logger.ExitMethodWithError("quoteRequestService.Create", err, "role", actor.Role)
		return nil, err
	}
	if err := in.Validate(); err != nil {
		logger.ExitMethodWithError("quoteRequestService.Create", err)
		return nil, err
	}

	req := domain.NewQuoteRequest(actor.ID, in, s.now().UTC())
	if err := s.requestRepo.Create(ctx, req); err != nil {
		logger.ExitMethodWithError("quoteRequestService.Create", err)
		return nil, fmt.Errorf("create quote request: %w", err)
	}
	s.metrics.IncQuoteRequestCreated()

	logger.ExitMethod("quoteRequestService.Create", "requestID", req.ID)
	return req, nil
}

func (s *quoteRequestService) ListOpen(ctx context.Context, actor domain.Actor, filter domain.QuoteRequestFilter) ([]domain.QuoteRequestView, error) {
	if !actor.Role.IsProvider() && actor.Role != domain.RoleAdmin {
		return nil, domain.Forbidden("only transporters and freight forwarders can browse open quote requests")
	}

	reqs, err := s.requestRepo.ListOpen(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list open quote requests: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.CompanyID)
	}
	owners, err := summaries(ctx, s.userRepo, ids)
	if err != nil {
		return nil, err
	}

	views := make([]domain.QuoteRequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, domain.QuoteRequestView{QuoteRequest: r, Company: owners[r.CompanyID]})
	}
	return views, nil
}

func (s *quoteRequestService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.QuoteRequestView, error) {
	if actor.Role != domain.RoleCompany {
		return nil, domain.Forbidden("only companies own quote requests")
	}

	reqs, err := s.requestRepo.ListByCompany(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list my quote requests: %w", err)
	}
	if len(reqs) == 0 {
		return []domain.QuoteRequestView{}, nil
	}

	reqIDs := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		reqIDs = append(reqIDs, r.ID)
	}
	responses, err := s.responseRepo.ListByRequests(ctx, reqIDs)
	if err != nil {
		return nil, fmt.Errorf("list responses for my quote requests: %w", err)
	}

	userIDs := []uuid.UUID{actor.ID}
	for _, r := range responses {
		userIDs = append(userIDs, r.ResponderID)
	}
	users, err := summaries(ctx, s.userRepo, userIDs)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[uuid.UUID][]domain.QuoteResponseView, len(reqs))
	for _, r := range responses {
		byRequest[r.QuoteRequestID] = append(byRequest[r.QuoteRequestID], domain.QuoteResponseView{
			QuoteResponse: r,
			Responder:     users[r.ResponderID],
		})
	}

	views := make([]domain.QuoteRequestView, 0, len(reqs))
	for _, r := range reqs {
		rs := byRequest[r.ID]
		if rs == nil {
			rs = []domain.QuoteResponseView{}
		}
		views = append(views, domain.QuoteRequestView{QuoteRequest: r, Company: users[actor.ID], Responses: rs})
	}
	return views, nil
}

func (s *quoteRequestService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.QuoteRequestView, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner := req.CompanyID == actor.ID
	if !owner && !actor.Role.IsProvider() && actor.Role != domain.RoleAdmin {
		return nil, domain.Forbidden("not allowed to view this quote request")
	}

	owners, err := summaries(ctx, s.userRepo, []uuid.UUID{req.CompanyID})
	if err != nil {
		return nil, err
	}
	view := &domain.QuoteRequestView{QuoteRequest: *req, Company: owners[req.CompanyID]}

	// Owners see the responses they received.
	if owner {
		responses, err := s.responseRepo.ListByRequest(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("list responses: %w", err)
		}
		view.Responses, err = responseViews(ctx, s.userRepo, responses)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

// summaries resolves public user summaries. Unknown ids are simply absent.
func summaries(ctx context.Context, userRepo repository.UserRepository, ids []uuid.UUID) (map[uuid.UUID]*domain.UserSummary, error) {
	out := make(map[uuid.UUID]*domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := userRepo.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve user summaries: %w", err)
	}
	for id, u := range users {
		sum := u.Summary()
		out[id] = &sum
	}
	return out, nil
}

func responseViews(ctx context.Context, userRepo repository.UserRepository, responses []domain.QuoteResponse) ([]domain.QuoteResponseView, error) {
	ids := make([]uuid.UUID, 0, len(responses))
	for _, r := range responses {
		ids = append(ids, r.ResponderID)
	}
	users, err := summaries(ctx, userRepo, ids)
	if err != nil {
		return nil, err
	}
	views := make([]domain.QuoteResponseView, 0, len(responses))
	for _, r := range responses {
		views = append(views, domain.QuoteResponseView{QuoteResponse: r, Responder: users[r.ResponderID]})
	}
	return views, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
