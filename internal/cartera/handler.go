package cartera

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// SnapshotParser turns an uploaded workbook into snapshot rows.
type SnapshotParser interface {
	Parse(r io.Reader, filename string, snapshotDate time.Time) ([]SnapshotRow, error)
}

// Handler manages reconciliation and snapshot-import endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	parser  SnapshotParser
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, parser SnapshotParser) *Handler {
	return &Handler{logger: logger, service: service, parser: parser}
}

// MountRoutes registers cartera routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/invoices", h.invoices)
	r.Get("/invoices/{documento}/history", h.history)
	r.Get("/report", h.report)
	r.Post("/import", h.importSnapshot)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	window, filters, err := parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	summary, err := h.service.GetSummary(r.Context(), window, filters)
	if err != nil {
		h.logger.Error("cartera summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) invoices(w http.ResponseWriter, r *http.Request) {
	window, filters, err := parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	lines, err := h.service.Invoices(r.Context(), window, filters)
	if err != nil {
		h.logger.Error("cartera invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

// report returns summary and listing in one payload, fetched concurrently.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	window, filters, err := parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	var (
		summary Summary
		lines   []InvoiceLine
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary, err = h.service.GetSummary(ctx, window, filters)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = h.service.Invoices(ctx, window, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("cartera report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"summary":  summary,
		"invoices": lines,
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	documento := chi.URLParam(r, "documento")
	rows, err := h.service.InvoiceHistory(r.Context(), documento)
	if err != nil {
		h.logger.Error("invoice history", slog.Any("error", err), slog.String("documento", documento))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "multipart form expected")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "file field required")
		return
	}
	defer func() { _ = file.Close() }()

	snapshotDate := time.Now()
	if raw := r.FormValue("fecha_cartera"); raw != "" {
		if snapshotDate, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("invalid fecha_cartera %q", raw))
			return
		}
	}

	rows, err := h.parser.Parse(file, header.Filename, snapshotDate)
	if err != nil {
		h.logger.Error("parse snapshot upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
		return
	}
	if len(rows) == 0 {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", "workbook produced no snapshot rows")
		return
	}

	n, err := h.service.ImportSnapshot(r.Context(), rows)
	if err != nil {
		h.logger.Error("import snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("snapshot imported",
		slog.Int("rows", n),
		slog.Time("fecha_cartera", snapshotDate),
		slog.String("file", header.Filename),
	)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"imported":      n,
		"fecha_cartera": snapshotDate.Format("2006-01-02"),
	})
}

func parseQuery(r *http.Request) (Window, Filters, error) {
	const layout = "2006-01-02"
	q := r.URL.Query()

	now := time.Now()
	window := Window{From: now.AddDate(0, -1, 0), To: now}
	var err error
	if raw := q.Get("from"); raw != "" {
		if window.From, err = time.Parse(layout, raw); err != nil {
			return Window{}, Filters{}, fmt.Errorf("invalid from date %q", raw)
		}
	}
	if raw := q.Get("to"); raw != "" {
		if window.To, err = time.Parse(layout, raw); err != nil {
			return Window{}, Filters{}, fmt.Errorf("invalid to date %q", raw)
		}
	}

	tipo := PortfolioNacional
	if raw := q.Get("tipo"); raw != "" {
		switch PortfolioType(raw) {
		case PortfolioNacional, PortfolioInternacional:
			tipo = PortfolioType(raw)
		default:
			return Window{}, Filters{}, fmt.Errorf("invalid tipo %q", raw)
		}
	}

	return window, Filters{
		ExecutiveEmail: q.Get("executive"),
		ClientNIT:      q.Get("nit"),
		Tipo:           tipo,
	}, nil
}
