package trm

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// Handler serves the stored exchange rate.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the TRM HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches TRM routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/latest", h.latest)
	r.Post("/ingest", h.ingest)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Latest(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

// ingest runs a pull synchronously; the cron covers the nightly schedule and
// this endpoint covers manual refreshes.
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Ingest(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}
