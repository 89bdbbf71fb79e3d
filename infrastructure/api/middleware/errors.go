// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/threadlens/threadlens/application/service"
	"github.com/threadlens/threadlens/domain/insight"
	"github.com/threadlens/threadlens/domain/thread"
	"github.com/threadlens/threadlens/infrastructure/provider"
	"github.com/threadlens/threadlens/infrastructure/reddit"
)

// ErrorResponse is the JSON error body. RawData carries the formatted thread
// when the fetch succeeded but analysis did not, so the caller can retry the
// analysis by hand.
type ErrorResponse struct {
	Error   string `json:"error"`
	RawData string `json:"raw_data,omitempty"`
}

// WriteError maps err to an HTTP status and writes a JSON error response.
//
// Validation failures are the caller's fault (400), a missing thread is 404,
// and upstream fetch or model failures surface as 502 so clients can
// distinguish them from bugs in this service.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	WriteErrorData(w, r, err, "", logger)
}

// WriteErrorData is WriteError with the formatted thread attached to the
// error body.
func WriteErrorData(w http.ResponseWriter, r *http.Request, err error, rawData string, logger *slog.Logger) {
	status := http.StatusInternalServerError

	var fetchErr *reddit.FetchError
	var provErr *provider.ProviderError

	switch {
	case errors.Is(err, thread.ErrNotRedditURL),
		errors.Is(err, thread.ErrNotThreadURL),
		errors.Is(err, service.ErrEmptySubreddit):
		status = http.StatusBadRequest
	case errors.Is(err, reddit.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &fetchErr),
		errors.As(err, &provErr),
		errors.Is(err, insight.ErrUnparseable),
		errors.Is(err, provider.ErrNoChoices):
		status = http.StatusBadGateway
	}

	if logger != nil {
		logger.Error("request error",
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: err.Error(), RawData: rawData})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
