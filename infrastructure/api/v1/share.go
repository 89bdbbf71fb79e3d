package v1

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/threadlens/threadlens"
	"github.com/threadlens/threadlens/infrastructure/api/middleware"
	"github.com/threadlens/threadlens/infrastructure/api/v1/dto"
)

// maxSharePayloadBytes bounds stored share payloads.
const maxSharePayloadBytes = 1 << 20

// ShareRouter handles share link endpoints.
type ShareRouter struct {
	client *threadlens.Client
	logger *slog.Logger
}

// NewShareRouter creates a new ShareRouter.
func NewShareRouter(client *threadlens.Client) *ShareRouter {
	return &ShareRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for share endpoints.
func (r *ShareRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)

	return router
}

// Create handles POST /api/v1/share. The body is stored as-is and served
// back under the returned share ID.
func (r *ShareRouter) Create(w http.ResponseWriter, req *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(req.Body, maxSharePayloadBytes))
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "unreadable body"})
		return
	}
	if len(payload) == 0 || !json.Valid(payload) {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "No data provided"})
		return
	}

	id := r.client.Shares.Create(payload)

	middleware.WriteJSON(w, http.StatusOK, dto.ShareResponse{
		ShareID:  id,
		ShareURL: "/shared/" + id,
	})
}

// Get handles GET /api/v1/share/{id}.
func (r *ShareRouter) Get(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	payload, ok := r.client.Shares.Get(id)
	if !ok {
		middleware.WriteJSON(w, http.StatusNotFound, middleware.ErrorResponse{Error: "Share link not found or expired"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
