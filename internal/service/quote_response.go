package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/repository"
)

type quoteResponseService struct {
	requestRepo  repository.QuoteRequestRepository
	responseRepo repository.QuoteResponseRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewQuoteResponseService(
	requestRepo repository.QuoteRequestRepository,
	responseRepo repository.QuoteResponseRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	m *metrics.Metrics,
) QuoteResponseService {
	return &quoteResponseService{
		requestRepo:  requestRepo,
		responseRepo: responseRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *quoteResponseService) Create(ctx context.Context, actor domain.Actor, requestID uuid.UUID, in domain.QuoteResponseInput) (*domain.QuoteResponse, error) {
	logger.EnterMethod("quoteResponseService.Create", "actorID", actor.ID, "requestID", requestID)

	if !actor.Role.IsProvider() {
		err := domain.Forbidden("only transporters and freight forwarders can respond to quote requests")
		logger.ExitMethodWithError("quoteResponseService.Create", err, "role", actor.Role)
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("quoteResponseService.Create", err, "requestID", requestID)
		return nil, err
	}
	if !req.IsOpen() {
		err := domain.Conflict("quote request is closed")
		logger.ExitMethodWithError("quoteResponseService.Create", err, "requestID", requestID)
		return nil, err
	}
	if err := in.Validate(); err != nil {
		logger.ExitMethodWithError("quoteResponseService.Create", err)
		return nil, err
	}

	resp := domain.NewQuoteResponse(req.ID, actor.ID, in, s.now().UTC())
	// The repository re-checks the request status under a share lock.
	if err := s.responseRepo.Create(ctx, resp); err != nil {
		logger.ExitMethodWithError("quoteResponseService.Create", err, "requestID", requestID)
		return nil, fmt.Errorf("create quote response: %w", err)
	}
	s.metrics.IncQuoteResponseCreated()

	s.notifier.Notify(ctx, &domain.Notification{
		UserID:  req.CompanyID,
		Type:    domain.NotificationQuoteResponseReceived,
		Title:   "New quote received",
		Message: fmt.Sprintf("You received a quote of %.2f %s for %s to %s", resp.QuoteAmount, resp.Currency, req.PickupLocation, req.DeliveryLocation),
		Attributes: map[string]string{
			"quote_request_id":  req.ID.String(),
			"quote_response_id": resp.ID.String(),
		},
	})

	logger.ExitMethod("quoteResponseService.Create", "responseID", resp.ID)
	return resp, nil
}

// ListForRequest never distinguishes a missing request from one the actor
// does not own.
func (s *quoteResponseService) ListForRequest(ctx context.Context, actor domain.Actor, requestID uuid.UUID) ([]domain.QuoteResponseView, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != actor.ID {
		return nil, domain.NotFound("quote request not found")
	}

	responses, err := s.responseRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list quote responses: %w", err)
	}
	return responseViews(ctx, s.userRepo, responses)
}

func (s *quoteResponseService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.QuoteResponseView, error) {
	if !actor.Role.IsProvider() {
		return nil, domain.Forbidden("only transporters and freight forwarders submit quote responses")
	}

	responses, err := s.responseRepo.ListByResponder(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list my quote responses: %w", err)
	}
	if len(responses) == 0 {
		return []domain.QuoteResponseView{}, nil
	}

	reqIDs := make([]uuid.UUID, 0, len(responses))
	for _, r := range responses {
		reqIDs = append(reqIDs, r.QuoteRequestID)
	}
	reqs, err := s.requestRepo.GetByIDs(ctx, dedupe(reqIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve parent quote requests: %w", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ownerIDs = append(ownerIDs, r.CompanyID)
	}
	owners, err := summaries(ctx, s.userRepo, ownerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.QuoteResponseView, 0, len(responses))
	for _, r := range responses {
		view := domain.QuoteResponseView{QuoteResponse: r}
		if req, ok := reqs[r.QuoteRequestID]; ok {
			view.Request = &domain.QuoteRequestView{QuoteRequest: *req, Company: owners[req.CompanyID]}
		}
		views = append(views, view)
	}
	return views, nil
}

// Accept checks ownership up front, then leaves the status checks and the
// three-way transition to the repository's single transaction.
func (s *quoteResponseService) Accept(ctx context.Context, actor domain.Actor, responseID uuid.UUID) (result *domain.AcceptResult, err error) {
	logger.EnterMethod("quoteResponseService.Accept", "actorID", actor.ID, "responseID", responseID)
	defer func() {
		s.metrics.ObserveAccept(acceptOutcome(err))
		if err != nil {
			logger.ExitMethodWithError("quoteResponseService.Accept", err, "responseID", responseID)
			return
		}
		logger.ExitMethod("quoteResponseService.Accept", "responseID", responseID, "rejected", len(result.Rejected))
	}()

	resp, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	req, err := s.requestRepo.GetByID(ctx, resp.QuoteRequestID)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != actor.ID {
		return nil, domain.Forbidden("only the request owner can accept a quote")
	}

	result, err = s.responseRepo.Accept(ctx, responseID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	route := fmt.Sprintf("%s to %s", result.Request.PickupLocation, result.Request.DeliveryLocation)
	s.notifier.Notify(ctx, &domain.Notification{
		UserID:  result.Accepted.ResponderID,
		Type:    domain.NotificationQuoteAccepted,
		Title:   "Your quote was accepted",
		Message: fmt.Sprintf("Your quote for %s was accepted", route),
		Attributes: map[string]string{
			"quote_request_id":  result.Request.ID.String(),
			"quote_response_id": result.Accepted.ID.String(),
		},
	})
	for _, rej := range result.Rejected {
		s.notifier.Notify(ctx, &domain.Notification{
			UserID:  rej.ResponderID,
			Type:    domain.NotificationQuoteRejected,
			Title:   "Quote not selected",
			Message: fmt.Sprintf("Another quote was accepted for %s", route),
			Attributes: map[string]string{
				"quote_request_id":  result.Request.ID.String(),
				"quote_response_id": rej.ID.String(),
			},
		})
	}
	return result, nil
}

func acceptOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}
