package cartera

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andina-erp/andina-erp/internal/platform/httpx"
	"github.com/andina-erp/andina-erp/internal/recaudos"
)

type memRepo struct {
	date     time.Time
	rows     []ReconRow
	history  []SnapshotRow
	inserted []SnapshotRow
}

func (m *memRepo) LatestSnapshotDate(_ context.Context, _ PortfolioType) (time.Time, error) {
	if m.date.IsZero() {
		return time.Time{}, httpx.ErrNoSnapshot
	}
	return m.date, nil
}

func (m *memRepo) ListReconRows(_ context.Context, _ PortfolioType, _ time.Time) ([]ReconRow, error) {
	return m.rows, nil
}

func (m *memRepo) InvoiceHistory(_ context.Context, _ string) ([]SnapshotRow, error) {
	return m.history, nil
}

func (m *memRepo) InsertSnapshot(_ context.Context, rows []SnapshotRow) (int, error) {
	m.inserted = append(m.inserted, rows...)
	return len(rows), nil
}

type memRecaudos struct {
	recs []recaudos.Recaudo
}

func (m *memRecaudos) ListByInvoiceNumbers(_ context.Context, numeros []string) ([]recaudos.Recaudo, error) {
	keep := make(map[string]struct{}, len(numeros))
	for _, n := range numeros {
		keep[n] = struct{}{}
	}
	var out []recaudos.Recaudo
	for _, r := range m.recs {
		if _, ok := keep[r.NumeroFactura]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func newTestService(repo *memRepo, recs *memRecaudos, today time.Time) *Service {
	s := NewService(repo, recs, NewCache(nil, time.Minute))
	s.now = func() time.Time { return today }
	return s
}

func TestInvoicesReconcilesAcrossLocales(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	snapDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	dias := 20

	repo := &memRepo{
		date: snapDate,
		rows: []ReconRow{{
			SnapshotRow: SnapshotRow{
				NIT: "900123456", Documento: "FV-1-000000101-BOG",
				Dias: &dias, SaldoContable: "1.234,56", FechaCartera: snapDate,
			},
			ClientName: strPtr("La Sabana"),
		}},
	}
	recs := &memRecaudos{recs: []recaudos.Recaudo{{
		NumeroFactura:  "FV-1-000000101-BOG",
		FechaRecaudo:   today.AddDate(0, 0, -1),
		ValorCancelado: "1234.56",
	}}}

	svc := newTestService(repo, recs, today)
	lines, err := svc.Invoices(context.Background(), Window{}, Filters{})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// Same quantity in grouped and plain notation nets out to zero.
	require.InDelta(t, 1234.56, lines[0].SnapshotBalance, 1e-9)
	require.InDelta(t, 1234.56, lines[0].CollectedTotal, 1e-9)
	require.Equal(t, 0.0, lines[0].NetDebt)
	require.Equal(t, StatusPagado, lines[0].Status)
	require.Equal(t, "FV-1-000000", lines[0].DocumentoParts.Prefix)
	require.Equal(t, "101", lines[0].DocumentoParts.Highlight)
}

func TestInvoicesRawStringJoinDoesNotTrim(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dias := 5
	repo := &memRepo{
		date: today,
		rows: []ReconRow{{SnapshotRow: SnapshotRow{
			NIT: "900123456", Documento: "FV-1-000000101-BOG",
			Dias: &dias, SaldoContable: "500.000",
		}}},
	}
	// Trailing whitespace on the recaudo key: no match, on purpose.
	recs := &memRecaudos{recs: []recaudos.Recaudo{{
		NumeroFactura:  "FV-1-000000101-BOG ",
		FechaRecaudo:   today,
		ValorCancelado: "500.000",
	}}}

	svc := newTestService(repo, recs, today)
	lines, err := svc.Invoices(context.Background(), Window{}, Filters{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 0.0, lines[0].CollectedTotal)
	require.Equal(t, StatusPendienteSinPago, lines[0].Status)
}

func TestInvoicesOverpaymentClampsToZero(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dias := 5
	repo := &memRepo{
		date: today,
		rows: []ReconRow{{SnapshotRow: SnapshotRow{
			NIT: "1", Documento: "FV-1-000000200-A", Dias: &dias, SaldoContable: "100.000,00",
		}}},
	}
	recs := &memRecaudos{recs: []recaudos.Recaudo{{
		NumeroFactura: "FV-1-000000200-A", FechaRecaudo: today, ValorCancelado: "150.000,00",
	}}}

	svc := newTestService(repo, recs, today)
	lines, err := svc.Invoices(context.Background(), Window{}, Filters{})
	require.NoError(t, err)
	require.Equal(t, 0.0, lines[0].NetDebt)
	require.Equal(t, StatusPagado, lines[0].Status)
}

func TestSummaryAggregates(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	snapDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	overdueDias := -10
	currentDias := 15

	repo := &memRepo{
		date: snapDate,
		rows: []ReconRow{
			{SnapshotRow: SnapshotRow{
				NIT: "1", Documento: "FV-1-000000301-A",
				Dias: &overdueDias, SaldoContable: "1.000.000,00",
			}},
			{SnapshotRow: SnapshotRow{
				NIT: "1", Documento: "FV-1-000000302-A",
				Dias: &currentDias, SaldoContable: "400.000,00",
			}},
			{SnapshotRow: SnapshotRow{
				NIT: "2", Documento: "FV-1-000000303-B",
				SaldoContable: "250.000,00",
			}},
		},
	}
	recs := &memRecaudos{recs: []recaudos.Recaudo{
		// Inside the window.
		{NumeroFactura: "FV-1-000000301-A", FechaRecaudo: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), ValorCancelado: "300.000,00"},
		// Before the window: counts toward net debt, not toward the window total.
		{NumeroFactura: "FV-1-000000302-A", FechaRecaudo: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), ValorCancelado: "100.000,00"},
	}}

	svc := newTestService(repo, recs, today)
	window := Window{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	summary, err := svc.GetSummary(context.Background(), window, Filters{})
	require.NoError(t, err)

	require.Equal(t, snapDate, summary.SnapshotDate)
	// Balances not yet due plus the nil-dias row.
	require.InDelta(t, 650000, summary.ProjectedFromPartials, 1e-6)
	// 700.000 + 300.000 + 250.000 net of lifetime payments.
	require.InDelta(t, 1250000, summary.CurrentDebt, 1e-6)
	require.InDelta(t, 700000, summary.OverdueDebt, 1e-6)
	require.InDelta(t, 300000, summary.TotalCollected, 1e-6)
}

func TestPredicateExecutiveMembershipIsExact(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dias := 5
	repo := &memRepo{
		date: today,
		rows: []ReconRow{
			{SnapshotRow: SnapshotRow{NIT: "1", Documento: "A", Dias: &dias, SaldoContable: "100"},
				ExecutiveEmail: strPtr(`["ana@andina-erp.local","juan@andina-erp.local"]`)},
			{SnapshotRow: SnapshotRow{NIT: "2", Documento: "B", Dias: &dias, SaldoContable: "100"},
				ExecutiveEmail: strPtr("other.ana@andina-erp.local")},
			{SnapshotRow: SnapshotRow{NIT: "3", Documento: "C", Dias: &dias, SaldoContable: "100"}},
		},
	}
	svc := newTestService(repo, &memRecaudos{}, today)

	lines, err := svc.Invoices(context.Background(), Window{}, Filters{ExecutiveEmail: "ana@andina-erp.local"})
	require.NoError(t, err)
	require.Len(t, lines, 1, "substring of another address must not match")
	require.Equal(t, "1", lines[0].NIT)

	lines, err = svc.Invoices(context.Background(), Window{}, Filters{ClientNIT: "3"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, "C", lines[0].Documento)
}

func TestSummaryWithoutSnapshot(t *testing.T) {
	svc := newTestService(&memRepo{}, &memRecaudos{}, time.Now())
	_, err := svc.GetSummary(context.Background(), Window{}, Filters{})
	require.ErrorIs(t, err, httpx.ErrNoSnapshot)
}

func TestImportSnapshotInserts(t *testing.T) {
	repo := &memRepo{date: time.Now()}
	svc := newTestService(repo, &memRecaudos{}, time.Now())
	n, err := svc.ImportSnapshot(context.Background(), []SnapshotRow{{NIT: "1", Documento: "A"}})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, repo.inserted, 1)
}
