package trm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// RepositoryPort is the persistence surface the service needs.
type RepositoryPort interface {
	Upsert(ctx context.Context, rate Rate) error
	Latest(ctx context.Context) (*Rate, error)
}

// Service coordinates ingestion and reads.
type Service struct {
	repo   RepositoryPort
	source SourcePort
	logger *slog.Logger
}

// NewService wires the service.
func NewService(repo RepositoryPort, source SourcePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, source: source, logger: logger}
}

// Ingest fetches the latest published rate and stores it.
func (s *Service) Ingest(ctx context.Context) (*Rate, error) {
	rate, err := s.source.FetchLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("trm: ingest: %w", err)
	}
	if err := s.repo.Upsert(ctx, *rate); err != nil {
		return nil, err
	}
	s.logger.Info("trm ingested",
		slog.Float64("valor", rate.Valor),
		slog.Time("vigente_desde", rate.VigenteDesde))
	return rate, nil
}

// Latest returns the last stored rate.
func (s *Service) Latest(ctx context.Context) (*Rate, error) {
	return s.repo.Latest(ctx)
}

// HandleIngestTask is the asynq handler behind the nightly cron. The source
// is external and flaky; errors propagate so asynq retries the pull.
func (s *Service) HandleIngestTask(ctx context.Context, _ *asynq.Task) error {
	_, err := s.Ingest(ctx)
	return err
}
