package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// Handler is the inbound HTTP adapter. It holds the Planner that
// executes the workflow and a logger for structured logging; routes are
// registered on a chi.Router for convenient method handling.
type Handler struct {
	planner port.Planner
	logger  *slog.Logger
	router  chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(planner port.Planner, logger *slog.Logger) *Handler {
	h := &Handler{planner: planner, logger: logger}
	r := chi.NewRouter()

	r.Get("/health", h.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/status", h.handleStatus)
			r.Post("/process", h.handleProcess)
			r.Post("/edit", h.handleEdit)
			r.Post("/reforecast", h.handleReforecast)
			r.Post("/reset", h.handleReset)
			r.Post("/chat", h.handleChat)
			r.Delete("/", h.handleDestroySession)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
