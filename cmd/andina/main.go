package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/andina-erp/andina-erp/internal/app"
	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/cartera/importer"
	"github.com/andina-erp/andina-erp/internal/clients"
	"github.com/andina-erp/andina-erp/internal/dispatch"
	"github.com/andina-erp/andina-erp/internal/platform/cache"
	"github.com/andina-erp/andina-erp/internal/platform/db"
	"github.com/andina-erp/andina-erp/internal/recaudos"
	"github.com/andina-erp/andina-erp/internal/trm"
	"github.com/andina-erp/andina-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summary cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	clientsRepo := clients.NewRepository(pool)
	clientsHandler := clients.NewHandler(logger, clientsRepo)

	recaudosRepo := recaudos.NewRepository(pool)
	recaudosHandler := recaudos.NewHandler(logger, recaudosRepo)

	carteraRepo := cartera.NewRepository(pool)
	carteraCache := cartera.NewCache(redisClient, cfg.CacheTTL)
	carteraService := cartera.NewService(carteraRepo, recaudosRepo, carteraCache)
	snapshotParser := importer.New(cfg.ImportDiasMora, cfg.ImportDiasCobro)
	carteraHandler := cartera.NewHandler(logger, carteraService, snapshotParser)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	dispatchRepo := dispatch.NewRepository(pool)
	estado := dispatch.NewEstado(carteraRepo, clientsRepo, cfg.DispatchInternalEmails)
	dispatchQueue := dispatch.NewQueue(estado, dispatchRepo, jobsClient, logger)
	dispatchHandler := dispatch.NewHandler(dispatchQueue, dispatchRepo, logger)

	trmRepo := trm.NewRepository(pool)
	trmSource := trm.NewHTTPSource(cfg.TRMServiceURL, cfg.TRMTimeout)
	trmService := trm.NewService(trmRepo, trmSource, logger)
	trmHandler := trm.NewHandler(trmService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Pool:            pool,
		ClientsHandler:  clientsHandler,
		CarteraHandler:  carteraHandler,
		RecaudosHandler: recaudosHandler,
		DispatchHandler: dispatchHandler,
		TRMHandler:      trmHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
