package recaudos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andina-erp/andina-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for the collections
// ledger. Records are append-only; there is no update or delete path.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create appends one recaudo.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Recaudo, error) {
	now := time.Now()
	row := r.pool.QueryRow(ctx, `
INSERT INTO recaudos (numero_factura, fecha_recaudo, valor_cancelado, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, numero_factura, fecha_recaudo, valor_cancelado, created_at`,
		input.NumeroFactura, input.FechaRecaudo, input.ValorCancelado, now)
	var rec Recaudo
	if err := row.Scan(&rec.ID, &rec.NumeroFactura, &rec.FechaRecaudo, &rec.ValorCancelado, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("recaudos: create: %w", err)
	}
	return &rec, nil
}

// BulkInsert appends a batch of recaudos in one transaction.
func (r *Repository) BulkInsert(ctx context.Context, inputs []CreateInput) (int, error) {
	var written int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		for _, in := range inputs {
			if _, err := tx.Exec(ctx, `
INSERT INTO recaudos (numero_factura, fecha_recaudo, valor_cancelado, created_at)
VALUES ($1, $2, $3, $4)`, in.NumeroFactura, in.FechaRecaudo, in.ValorCancelado, now); err != nil {
				return fmt.Errorf("recaudos: insert %s: %w", in.NumeroFactura, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// List returns recaudos whose fecha_recaudo falls inside the inclusive window.
func (r *Repository) List(ctx context.Context, from, to time.Time) ([]Recaudo, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, numero_factura, fecha_recaudo, valor_cancelado, created_at
FROM recaudos
WHERE fecha_recaudo >= $1 AND fecha_recaudo <= $2
ORDER BY fecha_recaudo, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("recaudos: list: %w", err)
	}
	return scanRecaudos(rows)
}

// ListByInvoiceNumbers returns every recaudo for the given invoice numbers.
// Matching is raw string equality on numero_factura.
func (r *Repository) ListByInvoiceNumbers(ctx context.Context, numeros []string) ([]Recaudo, error) {
	if len(numeros) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, numero_factura, fecha_recaudo, valor_cancelado, created_at
FROM recaudos
WHERE numero_factura = ANY($1)
ORDER BY fecha_recaudo, id`, numeros)
	if err != nil {
		return nil, fmt.Errorf("recaudos: list by invoice: %w", err)
	}
	return scanRecaudos(rows)
}

func scanRecaudos(rows pgx.Rows) ([]Recaudo, error) {
	defer rows.Close()
	var out []Recaudo
	for rows.Next() {
		var rec Recaudo
		if err := rows.Scan(&rec.ID, &rec.NumeroFactura, &rec.FechaRecaudo, &rec.ValorCancelado, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("recaudos: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recaudos: rows: %w", err)
	}
	return out, nil
}
