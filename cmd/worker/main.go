package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/andina-erp/andina-erp/internal/app"
	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/clients"
	"github.com/andina-erp/andina-erp/internal/dispatch"
	"github.com/andina-erp/andina-erp/internal/mail"
	"github.com/andina-erp/andina-erp/internal/platform/db"
	"github.com/andina-erp/andina-erp/internal/trm"
	"github.com/andina-erp/andina-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	carteraRepo := cartera.NewRepository(pool)
	clientsRepo := clients.NewRepository(pool)
	dispatchRepo := dispatch.NewRepository(pool)
	estado := dispatch.NewEstado(carteraRepo, clientsRepo, cfg.DispatchInternalEmails)
	dispatchJob := dispatch.NewJob(dispatchRepo, carteraRepo, clientsRepo, sender, estado, logger)

	trmRepo := trm.NewRepository(pool)
	trmSource := trm.NewHTTPSource(cfg.TRMServiceURL, cfg.TRMTimeout)
	trmService := trm.NewService(trmRepo, trmSource, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeDispatchProcess, Handler: dispatchJob.Handle},
			{Type: jobs.TaskTypeTRMIngest, Handler: trmService.HandleIngestTask},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 18 * * 1-5", Task: jobs.NewTRMIngestTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
