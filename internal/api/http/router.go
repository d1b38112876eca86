package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/security"
	"freighthub-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	QuoteRequests  service.QuoteRequestService
	QuoteResponses service.QuoteResponseService
	Communities    service.CommunityService
	Users          service.UserService
	Notifications  service.NotificationService
}

type Handler struct {
	svc     *Services
	health  Pinger
	metrics *metrics.Metrics
}

func NewHandler(svc *Services, health Pinger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, health: health, metrics: m}
}

// NewRouter registers every route by name. Route names select the security
// level in config.EndpointSecurityConfig and label request metrics.
func NewRouter(h *Handler, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = notFoundHandler()
	r.MethodNotAllowedHandler = methodNotAllowedHandler()
	r.Use(accessLog(h.metrics), authenticate(tokens))

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet).Name("healthz")
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet).Name("metrics")
	}

	// Subrouters do not inherit the root fallbacks.
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = notFoundHandler()
	api.MethodNotAllowedHandler = methodNotAllowedHandler()

	api.HandleFunc("/quote-requests", h.CreateQuoteRequest).Methods(http.MethodPost).Name("createQuoteRequest")
	api.HandleFunc("/quote-requests", h.ListOpenQuoteRequests).Methods(http.MethodGet).Name("listOpenQuoteRequests")
	api.HandleFunc("/quote-requests/my", h.ListMyQuoteRequests).Methods(http.MethodGet).Name("listMyQuoteRequests")
	api.HandleFunc("/quote-requests/{id}", h.GetQuoteRequest).Methods(http.MethodGet).Name("getQuoteRequest")
	api.HandleFunc("/quote-requests/{id}/respond", h.CreateQuoteResponse).Methods(http.MethodPost).Name("createQuoteResponse")
	api.HandleFunc("/quote-requests/{id}/responses", h.ListQuoteResponses).Methods(http.MethodGet).Name("listQuoteResponses")
	api.HandleFunc("/quote-responses/my", h.ListMyQuoteResponses).Methods(http.MethodGet).Name("listMyQuoteResponses")
	api.HandleFunc("/quote-responses/{id}/accept", h.AcceptQuoteResponse).Methods(http.MethodPost).Name("acceptQuoteResponse")

	api.HandleFunc("/community", h.CreateCommunity).Methods(http.MethodPost).Name("createCommunity")
	api.HandleFunc("/community", h.ListCommunities).Methods(http.MethodGet).Name("listCommunities")
	api.HandleFunc("/community/{id}", h.GetCommunity).Methods(http.MethodGet).Name("getCommunity")
	api.HandleFunc("/community/{id}/join", h.JoinCommunity).Methods(http.MethodPost).Name("joinCommunity")
	api.HandleFunc("/community/{id}/leave", h.LeaveCommunity).Methods(http.MethodPost).Name("leaveCommunity")
	api.HandleFunc("/community/{id}/join-request", h.RequestJoin).Methods(http.MethodPost).Name("requestJoin")
	api.HandleFunc("/community/{id}/join-requests", h.ListJoinRequests).Methods(http.MethodGet).Name("listJoinRequests")
	api.HandleFunc("/community/{id}/join-requests/{requestId}/process", h.ProcessJoinRequest).Methods(http.MethodPost).Name("processJoinRequest")

	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name("listNotifications")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name("markNotificationRead")

	api.HandleFunc("/users/me", h.GetMe).Methods(http.MethodGet).Name("getMe")
	api.HandleFunc("/users/me/profile", h.UpdateProfile).Methods(http.MethodPut).Name("updateProfile")
	api.HandleFunc("/users/me/push-token", h.RegisterPushToken).Methods(http.MethodPut).Name("registerPushToken")

	return r
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Status: statusError, Message: "database unavailable"})
		return
	}
	ok(w, http.StatusOK, nil)
}

// actor is only absent when a route is misconfigured as public.
func actor(r *http.Request) (domain.Actor, error) {
	a, found := ActorFromContext(r.Context())
	if !found {
		return domain.Actor{}, errUnauthenticated
	}
	return a, nil
}
