package cartera

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andina-erp/andina-erp/internal/platform/db"
	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for the snapshot store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// tipoPredicate scopes a query to one portfolio bucket. Rows with NULL or
// anything other than 'internacional' belong to the national bucket.
const tipoPredicate = `(
	($1 = 'internacional' AND catera_type = 'internacional')
	OR ($1 <> 'internacional' AND (catera_type IS NULL OR catera_type <> 'internacional'))
)`

// LatestSnapshotDate returns MAX(fecha_cartera) for the portfolio bucket, or
// httpx.ErrNoSnapshot when no generation exists.
func (r *Repository) LatestSnapshotDate(ctx context.Context, tipo PortfolioType) (time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(fecha_cartera) FROM cartera WHERE `+tipoPredicate, string(tipo)).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("cartera: latest snapshot date: %w", err)
	}
	if latest == nil {
		return time.Time{}, fmt.Errorf("cartera: tipo %s: %w", tipo, httpx.ErrNoSnapshot)
	}
	return *latest, nil
}

const reconQuery = `
SELECT ca.id, ca.nit, ca.documento, ca.fecha, ca.vence, ca.dias,
       ca.saldo_contable, ca.saldo_vencido, COALESCE(ca.catera_type, 'nacional'),
       ca.fecha_cartera, ca.batch_id,
       cl.client_name, cl.executive_email
FROM cartera ca
LEFT JOIN clients cl ON cl.nit = ca.nit
WHERE ca.fecha_cartera = $2 AND ` + tipoPredicate + `
ORDER BY ca.dias ASC NULLS LAST, ca.documento`

// ListReconRows returns the snapshot generation at snapshotDate joined with
// client master data. Recaudo sums are attached later in Go so that
// numfmt.ParseAmount stays the only decoder of the stored amount text.
func (r *Repository) ListReconRows(ctx context.Context, tipo PortfolioType, snapshotDate time.Time) ([]ReconRow, error) {
	rows, err := r.pool.Query(ctx, reconQuery, string(tipo), snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("cartera: recon rows: %w", err)
	}
	defer rows.Close()
	var out []ReconRow
	for rows.Next() {
		var rr ReconRow
		if err := rows.Scan(
			&rr.ID, &rr.NIT, &rr.Documento, &rr.Fecha, &rr.Vence, &rr.Dias,
			&rr.SaldoContable, &rr.SaldoVencido, &rr.Tipo, &rr.FechaCartera, &rr.BatchID,
			&rr.ClientName, &rr.ExecutiveEmail,
		); err != nil {
			return nil, fmt.Errorf("cartera: scan recon row: %w", err)
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cartera: recon rows: %w", err)
	}
	return out, nil
}

// ListByDateAndNIT returns the snapshot rows for one client at one generation.
// The dispatch worker re-derives its payload through this query.
func (r *Repository) ListByDateAndNIT(ctx context.Context, snapshotDate time.Time, nit string) ([]SnapshotRow, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, nit, documento, fecha, vence, dias, saldo_contable, saldo_vencido,
       COALESCE(catera_type, 'nacional'), fecha_cartera, batch_id
FROM cartera
WHERE fecha_cartera = $1 AND nit = $2
ORDER BY dias ASC NULLS LAST, documento`, snapshotDate, nit)
	if err != nil {
		return nil, fmt.Errorf("cartera: list by date/nit: %w", err)
	}
	return scanSnapshotRows(rows)
}

// ListByDate returns every snapshot row of one generation, used to group the
// snapshot by client before enqueueing notifications.
func (r *Repository) ListByDate(ctx context.Context, snapshotDate time.Time) ([]SnapshotRow, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, nit, documento, fecha, vence, dias, saldo_contable, saldo_vencido,
       COALESCE(catera_type, 'nacional'), fecha_cartera, batch_id
FROM cartera
WHERE fecha_cartera = $1
ORDER BY nit, dias ASC NULLS LAST`, snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("cartera: list by date: %w", err)
	}
	return scanSnapshotRows(rows)
}

// InvoiceHistory returns every generation of one invoice number, newest
// first. Historical snapshots are visible only through this query.
func (r *Repository) InvoiceHistory(ctx context.Context, documento string) ([]SnapshotRow, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, nit, documento, fecha, vence, dias, saldo_contable, saldo_vencido,
       COALESCE(catera_type, 'nacional'), fecha_cartera, batch_id
FROM cartera
WHERE documento = $1
ORDER BY fecha_cartera DESC`, documento)
	if err != nil {
		return nil, fmt.Errorf("cartera: invoice history: %w", err)
	}
	return scanSnapshotRows(rows)
}

func scanSnapshotRows(rows pgx.Rows) ([]SnapshotRow, error) {
	defer rows.Close()
	var out []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		if err := rows.Scan(&s.ID, &s.NIT, &s.Documento, &s.Fecha, &s.Vence, &s.Dias,
			&s.SaldoContable, &s.SaldoVencido, &s.Tipo, &s.FechaCartera, &s.BatchID); err != nil {
			return nil, fmt.Errorf("cartera: scan snapshot row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cartera: rows: %w", err)
	}
	return out, nil
}

// InsertSnapshot appends a full generation of snapshot rows inside one
// transaction. Rows are never updated afterwards.
func (r *Repository) InsertSnapshot(ctx context.Context, rows []SnapshotRow) (int, error) {
	if len(rows) == 0 {
		return 0, errors.New("cartera: empty snapshot")
	}
	var written int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, s := range rows {
			if _, err := tx.Exec(ctx, `
INSERT INTO cartera (nit, documento, fecha, vence, dias, saldo_contable, saldo_vencido, catera_type, fecha_cartera, batch_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				s.NIT, s.Documento, s.Fecha, s.Vence, s.Dias, s.SaldoContable, s.SaldoVencido,
				string(s.Tipo), s.FechaCartera, s.BatchID); err != nil {
				return fmt.Errorf("cartera: insert row %s: %w", s.Documento, err)
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
