// Package v1 implements the versioned HTTP API.
package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/threadlens/threadlens"
	"github.com/threadlens/threadlens/application/service"
	"github.com/threadlens/threadlens/infrastructure/api/middleware"
	"github.com/threadlens/threadlens/infrastructure/api/v1/dto"
)

// AnalyzeRouter handles thread analysis endpoints.
type AnalyzeRouter struct {
	client *threadlens.Client
	logger *slog.Logger
}

// NewAnalyzeRouter creates a new AnalyzeRouter.
func NewAnalyzeRouter(client *threadlens.Client) *AnalyzeRouter {
	return &AnalyzeRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for analysis endpoints.
func (r *AnalyzeRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Analyze)

	return router
}

// Analyze handles POST /api/v1/analyze.
func (r *AnalyzeRouter) Analyze(w http.ResponseWriter, req *http.Request) {
	var body dto.AnalyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid JSON body"})
		return
	}
	if body.URL == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "No URL provided"})
		return
	}

	var opts []service.AnalyzeOption
	if body.APIKey != "" {
		opts = append(opts, service.WithUserAPIKey(body.APIKey))
	}

	result, err := r.client.Analyzer.Analyze(req.Context(), body.URL, opts...)
	if err != nil {
		// On analysis failure the result still carries the formatted
		// thread; surface it so the caller can retry by hand.
		middleware.WriteErrorData(w, req, err, result.RawData, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
