// Package memory is an in-process repository backend for local development
// and tests. A single mutex serializes every operation, which gives the same
// atomicity the Postgres backend gets from transactions.
package memory

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/repository"
)

type state struct {
	mu            sync.Mutex
	users         map[uuid.UUID]domain.User
	requests      map[uuid.UUID]domain.QuoteRequest
	responses     map[uuid.UUID]domain.QuoteResponse
	reminded      map[uuid.UUID]time.Time
	communities   map[uuid.UUID]*domain.Community
	notifications map[uuid.UUID]domain.Notification
}

type Store struct {
	repository.UserRepository
	repository.QuoteRequestRepository
	repository.QuoteResponseRepository
	repository.CommunityRepository
	repository.NotificationRepository
}

func NewStore() *Store {
	s := &state{
		users:         make(map[uuid.UUID]domain.User),
		requests:      make(map[uuid.UUID]domain.QuoteRequest),
		responses:     make(map[uuid.UUID]domain.QuoteResponse),
		reminded:      make(map[uuid.UUID]time.Time),
		communities:   make(map[uuid.UUID]*domain.Community),
		notifications: make(map[uuid.UUID]domain.Notification),
	}
	return &Store{
		UserRepository:          &userRepository{s},
		QuoteRequestRepository:  &quoteRequestRepository{s},
		QuoteResponseRepository: &quoteResponseRepository{s},
		CommunityRepository:     &communityRepository{s},
		NotificationRepository:  &notificationRepository{s},
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// sortNewestFirst orders records by creation time, newest first. Equal
// timestamps fall back to ID order so map iteration never shows through.
func sortNewestFirst[T any](list []T, key func(*T) (time.Time, uuid.UUID)) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, idi := key(&list[i])
		tj, idj := key(&list[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idLess(idi, idj)
	})
}

func idLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// users

type userRepository struct{ s *state }

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &u, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *userRepository) Upsert(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := r.s.users[u.ID]; ok {
		u.CreatedAt = prev.CreatedAt
		u.Role = prev.Role
		u.PushToken = prev.PushToken
	} else if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepository) SetPushToken(ctx context.Context, id uuid.UUID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFound("user not found")
	}
	u.PushToken = token
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

// quote requests

type quoteRequestRepository struct{ s *state }

func (r *quoteRequestRepository) Create(ctx context.Context, q *domain.QuoteRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[q.ID]; ok {
		return domain.Conflict("quote request already exists")
	}
	r.s.requests[q.ID] = *q
	return nil
}

func (r *quoteRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.requests[id]
	if !ok {
		return nil, domain.NotFound("quote request not found")
	}
	return &q, nil
}

func (r *quoteRequestRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.QuoteRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.QuoteRequest, len(ids))
	for _, id := range ids {
		if q, ok := r.s.requests[id]; ok {
			out[id] = &q
		}
	}
	return out, nil
}

func (r *quoteRequestRepository) ListOpen(ctx context.Context, f domain.QuoteRequestFilter) ([]domain.QuoteRequest, error) {
	return r.list(func(q *domain.QuoteRequest) bool { return q.IsOpen() && f.Matches(q) }), nil
}

func (r *quoteRequestRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.QuoteRequest, error) {
	return r.list(func(q *domain.QuoteRequest) bool { return q.CompanyID == companyID }), nil
}

func (r *quoteRequestRepository) list(keep func(q *domain.QuoteRequest) bool) []domain.QuoteRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.QuoteRequest
	for _, q := range r.s.requests {
		if keep(&q) {
			out = append(out, q)
		}
	}
	sortNewestFirst(out, func(q *domain.QuoteRequest) (time.Time, uuid.UUID) { return q.CreatedAt, q.ID })
	return out
}

// quote responses

type quoteResponseRepository struct{ s *state }

func (r *quoteResponseRepository) Create(ctx context.Context, q *domain.QuoteResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[q.QuoteRequestID]
	if !ok {
		return domain.NotFound("quote request not found")
	}
	if !req.IsOpen() {
		return domain.Conflict("quote request is closed")
	}
	r.s.responses[q.ID] = *q
	return nil
}

func (r *quoteResponseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.responses[id]
	if !ok {
		return nil, domain.NotFound("quote response not found")
	}
	return &q, nil
}

func (r *quoteResponseRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.QuoteResponse, error) {
	return r.list(func(q *domain.QuoteResponse) bool { return q.QuoteRequestID == requestID }), nil
}

func (r *quoteResponseRepository) ListByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]domain.QuoteResponse, error) {
	return r.list(func(q *domain.QuoteResponse) bool { return slices.Contains(requestIDs, q.QuoteRequestID) }), nil
}

func (r *quoteResponseRepository) ListByResponder(ctx context.Context, responderID uuid.UUID) ([]domain.QuoteResponse, error) {
	return r.list(func(q *domain.QuoteResponse) bool { return q.ResponderID == responderID }), nil
}

func (r *quoteResponseRepository) list(keep func(q *domain.QuoteResponse) bool) []domain.QuoteResponse {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.QuoteResponse
	for _, q := range r.s.responses {
		if keep(&q) {
			out = append(out, q)
		}
	}
	sortNewestFirst(out, func(q *domain.QuoteResponse) (time.Time, uuid.UUID) { return q.CreatedAt, q.ID })
	return out
}

func (r *quoteResponseRepository) Accept(ctx context.Context, responseID uuid.UUID, now time.Time) (*domain.AcceptResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	resp, ok := r.s.responses[responseID]
	if !ok {
		return nil, domain.NotFound("quote response not found")
	}
	req, ok := r.s.requests[resp.QuoteRequestID]
	if !ok {
		return nil, domain.NotFound("quote request not found")
	}
	if !req.IsOpen() {
		return nil, domain.Conflict("quote request is already closed")
	}
	if !resp.IsPending() {
		return nil, domain.Conflict("quote response is no longer pending")
	}

	resp.Status = domain.QuoteResponseStatusAccepted
	resp.UpdatedAt = now
	r.s.responses[resp.ID] = resp

	var rejected []domain.QuoteResponse
	for id, sib := range r.s.responses {
		if sib.QuoteRequestID != req.ID || id == resp.ID || !sib.IsPending() {
			continue
		}
		sib.Status = domain.QuoteResponseStatusRejected
		sib.UpdatedAt = now
		r.s.responses[id] = sib
		rejected = append(rejected, sib)
	}

	req.Status = domain.QuoteRequestStatusClosed
	req.UpdatedAt = now
	r.s.requests[req.ID] = req

	return &domain.AcceptResult{Accepted: &resp, Request: &req, Rejected: rejected}, nil
}

func (r *quoteResponseRepository) ClaimExpiring(ctx context.Context, from, to, now time.Time) ([]domain.QuoteResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.QuoteResponse
	for _, q := range r.s.responses {
		if _, done := r.s.reminded[q.ID]; done {
			continue
		}
		req, ok := r.s.requests[q.QuoteRequestID]
		if !ok || !req.IsOpen() || !q.IsPending() {
			continue
		}
		if !q.Validity.Before(from) && q.Validity.Before(to) {
			r.s.reminded[q.ID] = now
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Validity.Equal(out[j].Validity) {
			return out[i].Validity.Before(out[j].Validity)
		}
		return idLess(out[i].ID, out[j].ID)
	})
	return out, nil
}

// communities

type communityRepository struct{ s *state }

func (r *communityRepository) Create(ctx context.Context, c *domain.Community) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.communities[c.ID]; ok {
		return domain.Conflict("community already exists")
	}
	r.s.communities[c.ID] = c.Clone()
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[id]
	if !ok {
		return nil, domain.NotFound("community not found")
	}
	return c.Clone(), nil
}

func (r *communityRepository) ListVisible(ctx context.Context, actor domain.Actor) ([]domain.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Community
	for _, c := range r.s.communities {
		if c.CanView(actor) {
			out = append(out, *c.Clone())
		}
	}
	sortNewestFirst(out, func(q *domain.Community) (time.Time, uuid.UUID) { return q.CreatedAt, q.ID })
	return out, nil
}

func (r *communityRepository) Mutate(ctx context.Context, id uuid.UUID, fn repository.CommunityMutation) (*domain.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[id]
	if !ok {
		return nil, domain.NotFound("community not found")
	}
	next := c.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	r.s.communities[id] = next
	return next.Clone(), nil
}

func (r *communityRepository) ListWithPendingBefore(ctx context.Context, before time.Time) ([]domain.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Community
	for _, c := range r.s.communities {
		for _, jr := range c.JoinRequests {
			if jr.Status == domain.JoinRequestStatusPending && jr.RequestedAt.Before(before) {
				out = append(out, *c.Clone())
				break
			}
		}
	}
	sortNewestFirst(out, func(c *domain.Community) (time.Time, uuid.UUID) { return c.CreatedAt, c.ID })
	return out, nil
}

// notifications

type notificationRepository struct{ s *state }

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	sortNewestFirst(all, func(n *domain.Notification) (time.Time, uuid.UUID) { return n.CreatedAt, n.ID })
	total := int32(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return domain.NotFound("notification not found")
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, note := range r.s.notifications {
		if note.IsRead && note.CreatedAt.Before(before) {
			delete(r.s.notifications, id)
			n++
		}
	}
	return n, nil
}
