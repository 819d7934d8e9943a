package recaudos

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// RepositoryPort defines data access used by the handler.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInput) (*Recaudo, error)
	BulkInsert(ctx context.Context, inputs []CreateInput) (int, error)
	List(ctx context.Context, from, to time.Time) ([]Recaudo, error)
}

// Handler manages collections-ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	repo     RepositoryPort
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort) *Handler {
	return &Handler{logger: logger, repo: repo, validate: validator.New()}
}

// MountRoutes registers recaudo routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/batch", h.createBatch)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	out, err := h.repo.List(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list recaudos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	rec, err := h.repo.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create recaudo", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var inputs []CreateInput
	if err := httpx.DecodeJSON(r, &inputs); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	for i, in := range inputs {
		if err := h.validate.Struct(in); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: item %d: %s", httpx.ErrValidation, i, err.Error()))
			return
		}
	}
	n, err := h.repo.BulkInsert(r.Context(), inputs)
	if err != nil {
		h.logger.Error("bulk insert recaudos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int{"inserted": n})
}

func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	var err error
	if fromStr != "" {
		if from, err = time.Parse(layout, fromStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", fromStr)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(layout, toStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", toStr)
		}
	}
	return from, to, nil
}
