package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

var errUnauthenticated = errors.New("authentication required")

type envelope struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Results *int     `json:"results,omitempty"`
	Data    any      `json:"data,omitempty"`
}

type payload map[string]any

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// orNil keeps an absent payload out of the encoded envelope.
func (p payload) orNil() any {
	if p == nil {
		return nil
	}
	return p
}

func ok(w http.ResponseWriter, code int, data payload) {
	writeJSON(w, code, envelope{Status: statusSuccess, Data: data.orNil()})
}

func okMessage(w http.ResponseWriter, code int, message string, data payload) {
	writeJSON(w, code, envelope{Status: statusSuccess, Message: message, Data: data.orNil()})
}

func okList(w http.ResponseWriter, n int, data payload) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Results: &n, Data: data.orNil()})
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	if errors.Is(err, errUnauthenticated) {
		return http.StatusUnauthorized
	}
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as a fail envelope for caller errors and an error
// envelope for everything else. Internal messages never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, code, envelope{Status: statusError, Message: "internal server error"})
		return
	}

	body := envelope{Status: statusFail, Message: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Message = de.Message
		body.Fields = de.Fields
	}
	writeJSON(w, code, body)
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Status: statusFail, Message: "route not found: " + r.URL.Path})
	})
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Status: statusFail, Message: "method not allowed"})
	})
}
