package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for client master data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `nit, client_name, executive_email, email, portfolio_contact_email, created_at, updated_at`

// GetByNIT returns one client or httpx.ErrNotFound.
func (r *Repository) GetByNIT(ctx context.Context, nit string) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE nit = $1`, nit)
	var c Client
	if err := row.Scan(&c.NIT, &c.Name, &c.ExecutiveEmail, &c.DispatchConfirmationEmail, &c.PortfolioContactEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("clients: %s: %w", nit, httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("clients: get: %w", err)
	}
	return &c, nil
}

// List returns all clients ordered by name.
func (r *Repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY client_name NULLS LAST, nit`)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()
	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.NIT, &c.Name, &c.ExecutiveEmail, &c.DispatchConfirmationEmail, &c.PortfolioContactEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clients: rows: %w", err)
	}
	return out, nil
}

// ListByNITs returns the clients for the given NITs keyed by NIT. Missing
// NITs are simply absent from the map.
func (r *Repository) ListByNITs(ctx context.Context, nits []string) (map[string]Client, error) {
	if len(nits) == 0 {
		return map[string]Client{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE nit = ANY($1)`, nits)
	if err != nil {
		return nil, fmt.Errorf("clients: list by nits: %w", err)
	}
	defer rows.Close()
	out := make(map[string]Client, len(nits))
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.NIT, &c.Name, &c.ExecutiveEmail, &c.DispatchConfirmationEmail, &c.PortfolioContactEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out[c.NIT] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clients: rows: %w", err)
	}
	return out, nil
}

// Upsert inserts or updates a client keyed by NIT.
func (r *Repository) Upsert(ctx context.Context, input UpsertInput) (*Client, error) {
	now := time.Now()
	row := r.pool.QueryRow(ctx, `
INSERT INTO clients (nit, client_name, executive_email, email, portfolio_contact_email, created_at, updated_at)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), $6, $6)
ON CONFLICT (nit) DO UPDATE SET
	client_name = EXCLUDED.client_name,
	executive_email = EXCLUDED.executive_email,
	email = EXCLUDED.email,
	portfolio_contact_email = EXCLUDED.portfolio_contact_email,
	updated_at = EXCLUDED.updated_at
RETURNING `+clientColumns,
		input.NIT, input.Name, input.ExecutiveEmail, input.DispatchConfirmationEmail, input.PortfolioContactEmail, now)
	var c Client
	if err := row.Scan(&c.NIT, &c.Name, &c.ExecutiveEmail, &c.DispatchConfirmationEmail, &c.PortfolioContactEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("clients: upsert: %w", err)
	}
	return &c, nil
}
