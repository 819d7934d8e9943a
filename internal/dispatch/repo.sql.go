package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andina-erp/andina-erp/internal/platform/db"
	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for dispatch records.
// Nothing outside this package may touch send_status: all mutation goes
// through the enqueue upsert or the worker's status transitions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, client_nit, due_date, email_type,
	order_block_notification_emails, outstanding_balance_notification_emails,
	send_status, retry_count, error_message, email_sent_date, created_at, updated_at`

// UpsertGroups writes one record per client group inside a single
// transaction: either every group is persisted or none. The upsert is a
// full-column overwrite resetting the record to pending and blanking any
// prior error or sent date.
func (r *Repository) UpsertGroups(ctx context.Context, dueDate time.Time, etype EmailType, groups []ClientGroup) (int, error) {
	var written int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		for _, g := range groups {
			if g.NIT == "" {
				continue
			}
			if _, err := tx.Exec(ctx, `
INSERT INTO email_dispatch_queues
	(client_nit, due_date, email_type,
	 order_block_notification_emails, outstanding_balance_notification_emails,
	 send_status, retry_count, error_message, email_sent_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'pending', 0, NULL, NULL, $6, $6)
ON CONFLICT (client_nit, due_date, email_type) DO UPDATE SET
	order_block_notification_emails = EXCLUDED.order_block_notification_emails,
	outstanding_balance_notification_emails = EXCLUDED.outstanding_balance_notification_emails,
	send_status = 'pending',
	retry_count = email_dispatch_queues.retry_count + 1,
	error_message = NULL,
	email_sent_date = NULL,
	updated_at = EXCLUDED.updated_at`,
				g.NIT, dueDate, string(etype),
				strings.Join(g.OrderBlockRecipients, ","),
				strings.Join(g.BalanceRecipients, ","),
				now); err != nil {
				return fmt.Errorf("dispatch: upsert %s: %w", g.NIT, err)
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

// MarkSending transitions the record to sending.
func (r *Repository) MarkSending(ctx context.Context, nit string, dueDate time.Time, etype EmailType) error {
	return r.setStatus(ctx, nit, dueDate, etype, `
UPDATE email_dispatch_queues
SET send_status = 'sending', updated_at = NOW()
WHERE client_nit = $1 AND due_date = $2 AND email_type = $3`)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, nit string, dueDate time.Time, etype EmailType) error {
	return r.setStatus(ctx, nit, dueDate, etype, `
UPDATE email_dispatch_queues
SET send_status = 'sent', email_sent_date = NOW(), error_message = NULL, updated_at = NOW()
WHERE client_nit = $1 AND due_date = $2 AND email_type = $3`)
}

// MarkFailed records a terminal failure with its reason.
func (r *Repository) MarkFailed(ctx context.Context, nit string, dueDate time.Time, etype EmailType, reason string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE email_dispatch_queues
SET send_status = 'failed', error_message = $4, updated_at = NOW()
WHERE client_nit = $1 AND due_date = $2 AND email_type = $3`,
		nit, dueDate, string(etype), reason)
	if err != nil {
		return fmt.Errorf("dispatch: mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dispatch: record %s/%s: %w", nit, etype, httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) setStatus(ctx context.Context, nit string, dueDate time.Time, etype EmailType, query string) error {
	tag, err := r.pool.Exec(ctx, query, nit, dueDate, string(etype))
	if err != nil {
		return fmt.Errorf("dispatch: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dispatch: record %s/%s: %w", nit, etype, httpx.ErrNotFound)
	}
	return nil
}

// GetByKey returns one dispatch record.
func (r *Repository) GetByKey(ctx context.Context, nit string, dueDate time.Time, etype EmailType) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM email_dispatch_queues
WHERE client_nit = $1 AND due_date = $2 AND email_type = $3`,
		nit, dueDate, string(etype))
	var rec Record
	if err := scanRecord(row, &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dispatch: record %s/%s: %w", nit, etype, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// List returns dispatch records for a due date, optionally filtered by
// status.
func (r *Repository) List(ctx context.Context, dueDate time.Time, status SendStatus) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM email_dispatch_queues WHERE due_date = $1`
	args := []any{dueDate}
	if status != "" {
		query += ` AND send_status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY client_nit, email_type`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dispatch: list: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dispatch: rows: %w", err)
	}
	return out, nil
}

// CountDispatchableProducts counts pending order items for a client. The
// order-block suppression rule needs at least one.
func (r *Repository) CountDispatchableProducts(ctx context.Context, nit string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM order_items
WHERE client_nit = $1 AND quantity_pending > 0`, nit).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dispatch: count dispatchable: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row, rec *Record) error {
	if err := row.Scan(&rec.ID, &rec.ClientNIT, &rec.DueDate, &rec.EmailType,
		&rec.OrderBlockEmails, &rec.BalanceEmails,
		&rec.SendStatus, &rec.RetryCount, &rec.ErrorMessage, &rec.EmailSentDate,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("dispatch: scan record: %w", err)
	}
	return nil
}
