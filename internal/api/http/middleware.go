package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"freighthub-backend/internal/config"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/security"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unknown"
}

// accessLog tags the request context with a request id, then logs and
// records metrics for the request once it completes.
func accessLog(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			route := routeName(r)
			ctx := logger.WithRequest(r.Context(), requestID, "route", route)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			m.ObserveHTTP(route, r.Method, strconv.Itoa(rec.status), start)
			logger.InfoContext(ctx, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}

// authenticate enforces the security level configured for the matched route
// and attaches the token's actor to the request context.
func authenticate(tokens security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.GetSecurityLevel(routeName(r)) == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				writeError(w, r, fmt.Errorf("%w: bearer token is not provided", errUnauthenticated))
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected token", "error", err)
				writeError(w, r, fmt.Errorf("%w: invalid or expired token", errUnauthenticated))
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, r, fmt.Errorf("%w: access token required", errUnauthenticated))
				return
			}
			actor, err := claims.Actor()
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: %v", errUnauthenticated, err))
				return
			}

			ctx := withActor(r.Context(), actor)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("actor_id", actor.ID, "actor_role", actor.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
