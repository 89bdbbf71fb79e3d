package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/threadlens/threadlens"
	apimiddleware "github.com/threadlens/threadlens/infrastructure/api/middleware"
	v1 "github.com/threadlens/threadlens/infrastructure/api/v1"
	mcpinternal "github.com/threadlens/threadlens/internal/mcp"
)

// apiVersion is reported by the index endpoint and the MCP server.
const apiVersion = "1.0.0"

// APIServer provides an HTTP API backed by a threadlens Client.
type APIServer struct {
	client         *threadlens.Client
	allowedOrigins []string
	server         *Server
	router         chi.Router
	routerCalled   bool
	logger         *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given threadlens Client.
// allowedOrigins configures CORS; the analysis and share endpoints share one
// per-client quota, subreddit scans have their own tighter one.
func NewAPIServer(client *threadlens.Client, allowedOrigins []string) *APIServer {
	return &APIServer{
		client:         client,
		allowedOrigins: allowedOrigins,
		logger:         client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call
// MountRoutes(). If not called, ListenAndServe creates a default router with
// all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	analyzeRouter := v1.NewAnalyzeRouter(c)
	scanRouter := v1.NewScanRouter(c)
	shareRouter := v1.NewShareRouter(c)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(apimiddleware.Logging(a.logger))

	router.Get("/", a.index)
	router.Get("/healthz", a.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(90 * time.Second))

		// Analysis and sharing draw from one quota per client.
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.RateLimit(c.Limiter()))
			r.Mount("/analyze", analyzeRouter.Routes())
			r.Mount("/share", shareRouter.Routes())
		})

		// Scans hit the upstream listing API harder, so they get a
		// separate, tighter quota.
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.RateLimit(c.ScanLimiter()))
			r.Mount("/scan-subreddit", scanRouter.Routes())
		})
	})

	// MCP (Model Context Protocol) endpoint, deliberately without timeout
	// middleware.
	// MCP uses streaming responses and manages its own session state via
	// response headers, which is incompatible with chi's Timeout middleware
	// that wraps the ResponseWriter.
	mcpSrv := mcpinternal.NewServer(c.Analyzer, c.Scanner, apiVersion, a.logger)
	httpHandler := server.NewStreamableHTTPServer(mcpSrv.MCPServer())
	router.Mount("/mcp", httpHandler)
}

func (a *APIServer) index(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
		"name":    "threadlens",
		"version": apiVersion,
	})
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
