package cartera

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andina-erp/andina-erp/internal/clients"
	"github.com/andina-erp/andina-erp/internal/numfmt"
	"github.com/andina-erp/andina-erp/internal/recaudos"
)

// RepositoryPort defines snapshot-store access for the reconciliation engine.
type RepositoryPort interface {
	LatestSnapshotDate(ctx context.Context, tipo PortfolioType) (time.Time, error)
	ListReconRows(ctx context.Context, tipo PortfolioType, snapshotDate time.Time) ([]ReconRow, error)
	InvoiceHistory(ctx context.Context, documento string) ([]SnapshotRow, error)
	InsertSnapshot(ctx context.Context, rows []SnapshotRow) (int, error)
}

// RecaudosPort is the slice of the collections ledger the engine needs.
type RecaudosPort interface {
	ListByInvoiceNumbers(ctx context.Context, numeros []string) ([]recaudos.Recaudo, error)
}

// Window is an inclusive reporting period for collected totals.
type Window struct {
	From time.Time
	To   time.Time
}

// Service is the reconciliation engine: it pins the most recent snapshot
// generation and reconciles it against the recaudos ledger.
type Service struct {
	repo     RepositoryPort
	recaudos RecaudosPort
	cache    *Cache
	now      func() time.Time
}

// NewService wires the engine with its ports.
func NewService(repo RepositoryPort, rec RecaudosPort, cache *Cache) *Service {
	return &Service{repo: repo, recaudos: rec, cache: cache, now: time.Now}
}

// LatestSnapshotDate exposes the pinned generation for the bucket.
func (s *Service) LatestSnapshotDate(ctx context.Context, tipo PortfolioType) (time.Time, error) {
	return s.repo.LatestSnapshotDate(ctx, tipo)
}

// buildPredicate returns the one filter applied to every aggregate and
// listing. Keeping a single implementation avoids the filter drift the old
// report queries suffered from.
func buildPredicate(f Filters) func(ReconRow) bool {
	exec := strings.ToLower(strings.TrimSpace(f.ExecutiveEmail))
	nit := strings.TrimSpace(f.ClientNIT)
	return func(r ReconRow) bool {
		if nit != "" && r.NIT != nit {
			return false
		}
		if exec != "" {
			if r.ExecutiveEmail == nil || !clients.EmailListContains(*r.ExecutiveEmail, exec) {
				return false
			}
		}
		return true
	}
}

// reconcile loads the pinned generation and attaches recaudo sums computed in
// Go. The recaudo match is raw string equality on the invoice number.
func (s *Service) reconcile(ctx context.Context, tipo PortfolioType, window Window) ([]ReconRow, time.Time, error) {
	date, err := s.repo.LatestSnapshotDate(ctx, tipo)
	if err != nil {
		return nil, time.Time{}, err
	}
	rows, err := s.repo.ListReconRows(ctx, tipo, date)
	if err != nil {
		return nil, time.Time{}, err
	}

	numeros := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Documento]; ok {
			continue
		}
		seen[r.Documento] = struct{}{}
		numeros = append(numeros, r.Documento)
	}
	recs, err := s.recaudos.ListByInvoiceNumbers(ctx, numeros)
	if err != nil {
		return nil, time.Time{}, err
	}

	type sums struct{ total, inWindow float64 }
	byNumero := make(map[string]sums, len(numeros))
	for _, rec := range recs {
		v := numfmt.ParseAmount(rec.ValorCancelado)
		agg := byNumero[rec.NumeroFactura]
		agg.total += v
		if inWindow(rec.FechaRecaudo, window) {
			agg.inWindow += v
		}
		byNumero[rec.NumeroFactura] = agg
	}
	for i := range rows {
		agg := byNumero[rows[i].Documento]
		rows[i].CollectedTotal = agg.total
		rows[i].CollectedInWindow = agg.inWindow
	}
	return rows, date, nil
}

func inWindow(t time.Time, w Window) bool {
	if !w.From.IsZero() && t.Before(truncateDay(w.From)) {
		return false
	}
	if !w.To.IsZero() && t.After(truncateDay(w.To).AddDate(0, 0, 1).Add(-time.Nanosecond)) {
		return false
	}
	return true
}

// Invoices returns the reconciled per-invoice listing for the pinned
// snapshot, narrowed by filters.
func (s *Service) Invoices(ctx context.Context, window Window, filters Filters) ([]InvoiceLine, error) {
	rows, _, err := s.reconcile(ctx, filters.Tipo, window)
	if err != nil {
		return nil, err
	}
	keep := buildPredicate(filters)
	today := s.now()
	out := make([]InvoiceLine, 0, len(rows))
	for _, r := range rows {
		if !keep(r) {
			continue
		}
		out = append(out, buildLine(r, today))
	}
	return out, nil
}

func buildLine(r ReconRow, today time.Time) InvoiceLine {
	balance := r.Balance()
	net := NetDebt(balance, r.CollectedTotal)
	var overdue float64
	if r.Overdue(today) {
		overdue = net
	}
	name := ""
	if r.ClientName != nil {
		name = *r.ClientName
	}
	return InvoiceLine{
		NIT:             r.NIT,
		ClientName:      name,
		Documento:       r.Documento,
		DocumentoParts:  numfmt.SplitInvoiceNumber(r.Documento),
		Fecha:           r.Fecha,
		Vence:           r.Vence,
		Dias:            r.Dias,
		SnapshotBalance: balance,
		CollectedTotal:  r.CollectedTotal,
		NetDebt:         net,
		OverdueAmount:   overdue,
		Status:          Classify(net, r.CollectedTotal, overdue),
	}
}

// GetSummary computes the portfolio aggregates for the window and filters at
// the pinned snapshot, going through the Redis cache.
func (s *Service) GetSummary(ctx context.Context, window Window, filters Filters) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "cartera", "summary", string(filters.Tipo),
		window.From.Format("2006-01-02"), window.To.Format("2006-01-02"),
		filters.ExecutiveEmail, filters.ClientNIT)
	if err != nil {
		return Summary{}, fmt.Errorf("cartera: summary key: %w", err)
	}
	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		return s.computeSummary(ctx, window, filters)
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s *Service) computeSummary(ctx context.Context, window Window, filters Filters) (Summary, error) {
	rows, date, err := s.reconcile(ctx, filters.Tipo, window)
	if err != nil {
		return Summary{}, err
	}
	keep := buildPredicate(filters)
	today := s.now()
	summary := Summary{SnapshotDate: date}
	for _, r := range rows {
		if !keep(r) {
			continue
		}
		balance := r.Balance()
		net := NetDebt(balance, r.CollectedTotal)
		if r.Dias == nil || *r.Dias >= 0 {
			summary.ProjectedFromPartials += balance
		}
		summary.CurrentDebt += net
		if r.Overdue(today) {
			summary.OverdueDebt += net
		}
		summary.TotalCollected += r.CollectedInWindow
	}
	return summary, nil
}

// InvoiceHistory lists every stored generation of one invoice number.
func (s *Service) InvoiceHistory(ctx context.Context, documento string) ([]SnapshotRow, error) {
	return s.repo.InvoiceHistory(ctx, documento)
}

// ImportSnapshot appends a new generation and invalidates cached aggregates.
func (s *Service) ImportSnapshot(ctx context.Context, rows []SnapshotRow) (int, error) {
	n, err := s.repo.InsertSnapshot(ctx, rows)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		return n, fmt.Errorf("cartera: cache bump: %w", err)
	}
	return n, nil
}
