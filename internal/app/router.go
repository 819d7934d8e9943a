package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/clients"
	"github.com/andina-erp/andina-erp/internal/dispatch"
	"github.com/andina-erp/andina-erp/internal/recaudos"
	"github.com/andina-erp/andina-erp/internal/trm"
	"github.com/andina-erp/andina-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Pool            *pgxpool.Pool
	ClientsHandler  *clients.Handler
	CarteraHandler  *cartera.Handler
	RecaudosHandler *recaudos.Handler
	DispatchHandler *dispatch.Handler
	TRMHandler      *trm.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with Andina defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/clients", params.ClientsHandler.MountRoutes)
		api.Route("/cartera", params.CarteraHandler.MountRoutes)
		api.Route("/recaudos", params.RecaudosHandler.MountRoutes)
		api.Route("/dispatch", params.DispatchHandler.MountRoutes)
		api.Route("/trm", params.TRMHandler.MountRoutes)
		api.Route("/jobs", params.JobsHandler.MountRoutes)
	})

	return r
}
