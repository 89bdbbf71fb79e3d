package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/threadlens/threadlens"
	"github.com/threadlens/threadlens/infrastructure/api/middleware"
	"github.com/threadlens/threadlens/infrastructure/api/v1/dto"
)

// ScanRouter handles subreddit scan endpoints.
type ScanRouter struct {
	client *threadlens.Client
	logger *slog.Logger
}

// NewScanRouter creates a new ScanRouter.
func NewScanRouter(client *threadlens.Client) *ScanRouter {
	return &ScanRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for scan endpoints.
func (r *ScanRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Scan)

	return router
}

// Scan handles POST /api/v1/scan-subreddit.
func (r *ScanRouter) Scan(w http.ResponseWriter, req *http.Request) {
	var body dto.ScanRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid JSON body"})
		return
	}
	if body.Subreddit == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "No subreddit provided"})
		return
	}

	result, err := r.client.Scanner.Scan(req.Context(), body.Subreddit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
