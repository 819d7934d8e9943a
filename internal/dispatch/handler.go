package dispatch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// Handler exposes the enqueue trigger and dispatch-record inspection.
type Handler struct {
	queue    *Queue
	records  RecordsPort
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler constructs the dispatch HTTP handler.
func NewHandler(queue *Queue, records RecordsPort, logger *slog.Logger) *Handler {
	return &Handler{
		queue:    queue,
		records:  records,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// MountRoutes attaches dispatch routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/enqueue", h.enqueue)
	r.Get("/", h.list)
	r.Get("/{nit}", h.get)
}

type enqueueRequest struct {
	DueDate   string `json:"due_date" validate:"required,datetime=2006-01-02"`
	EmailType string `json:"email_type" validate:"required,oneof=order_block balance_notification"`
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)

	written, err := h.queue.Enqueue(r.Context(), dueDate, EmailType(req.EmailType))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"due_date":   req.DueDate,
		"email_type": req.EmailType,
		"enqueued":   written,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	dueDate, err := time.Parse("2006-01-02", r.URL.Query().Get("due_date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid due_date", "due_date must be YYYY-MM-DD")
		return
	}
	status := SendStatus(r.URL.Query().Get("status"))
	switch status {
	case "", StatusPending, StatusSending, StatusSent, StatusFailed:
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid status", "unknown send_status filter")
		return
	}
	records, err := h.records.List(r.Context(), dueDate, status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	dueDate, err := time.Parse("2006-01-02", r.URL.Query().Get("due_date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid due_date", "due_date must be YYYY-MM-DD")
		return
	}
	etype := EmailType(r.URL.Query().Get("email_type"))
	if _, nerr := notificationFor(etype); nerr != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid email_type", nerr.Error())
		return
	}
	rec, err := h.records.GetByKey(r.Context(), chi.URLParam(r, "nit"), dueDate, etype)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}
