package trm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// Repository persists exchange rates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert stores a rate keyed by its validity start. Re-ingesting the same
// day overwrites the value.
func (r *Repository) Upsert(ctx context.Context, rate Rate) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO trm_rates (valor, vigente_desde, vigente_hasta, created_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (vigente_desde) DO UPDATE SET
	valor = EXCLUDED.valor,
	vigente_hasta = EXCLUDED.vigente_hasta`,
		rate.Valor, rate.VigenteDesde, rate.VigenteHasta)
	if err != nil {
		return fmt.Errorf("trm: upsert: %w", err)
	}
	return nil
}

// Latest returns the most recently valid stored rate.
func (r *Repository) Latest(ctx context.Context) (*Rate, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, valor, vigente_desde, vigente_hasta, created_at
FROM trm_rates
ORDER BY vigente_desde DESC
LIMIT 1`)
	var rate Rate
	if err := row.Scan(&rate.ID, &rate.Valor, &rate.VigenteDesde, &rate.VigenteHasta, &rate.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trm: latest: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("trm: latest: %w", err)
	}
	return &rate, nil
}
