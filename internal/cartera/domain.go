package cartera

import (
	"time"

	"github.com/google/uuid"

	"github.com/andina-erp/andina-erp/internal/numfmt"
)

// PortfolioType buckets snapshots into national and international portfolios.
// Historical rows may carry NULL, which collapses into the national bucket.
type PortfolioType string

const (
	PortfolioNacional      PortfolioType = "nacional"
	PortfolioInternacional PortfolioType = "internacional"
)

// SnapshotRow is one outstanding-invoice line of a cartera snapshot. Rows are
// immutable once written; each fecha_cartera is a distinct generation and a
// re-import for the same date never merges with prior rows.
//
// SaldoContable and SaldoVencido are stored as locale-formatted text and must
// only be decoded through numfmt.ParseAmount.
type SnapshotRow struct {
	ID            int64         `json:"id"`
	NIT           string        `json:"nit"`
	Documento     string        `json:"documento"`
	Fecha         *time.Time    `json:"fecha"`
	Vence         *time.Time    `json:"vence"`
	Dias          *int          `json:"dias"`
	SaldoContable string        `json:"saldo_contable"`
	SaldoVencido  string        `json:"saldo_vencido"`
	Tipo          PortfolioType `json:"catera_type"`
	FechaCartera  time.Time     `json:"fecha_cartera"`
	BatchID       uuid.UUID     `json:"batch_id"`
}

// Balance decodes the snapshot balance.
func (s SnapshotRow) Balance() float64 {
	return numfmt.ParseAmount(s.SaldoContable)
}

// Overdue reports whether the row qualifies as overdue. Two redundant signals
// from different source columns; either one qualifies.
func (s SnapshotRow) Overdue(today time.Time) bool {
	if s.Dias != nil && *s.Dias < 0 {
		return true
	}
	if s.Vence != nil && s.Vence.Before(truncateDay(today)) {
		return true
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// InvoiceStatus classifies one invoice after reconciling against recaudos.
type InvoiceStatus string

const (
	StatusEnMora           InvoiceStatus = "EN MORA"
	StatusPagado           InvoiceStatus = "PAGADO"
	StatusPendiente        InvoiceStatus = "PENDIENTE"
	StatusPendienteSinPago InvoiceStatus = "PENDIENTE SIN PAGO"
	StatusSinInformacion   InvoiceStatus = "SIN INFORMACION"
	StatusDesconocido      InvoiceStatus = "DESCONOCIDO"
)

// Classify maps the reconciled figures of one invoice to its status. The
// branches are not mutually exclusive by construction, so the order is part of
// the contract: the overdue check always wins.
func Classify(netDebt, collected, overdue float64) InvoiceStatus {
	switch {
	case overdue > 0:
		return StatusEnMora
	case netDebt == 0 && collected > 0:
		return StatusPagado
	case netDebt > 0 && collected > 0:
		return StatusPendiente
	case netDebt > 0 && collected == 0:
		return StatusPendienteSinPago
	case netDebt == 0 && collected == 0:
		return StatusSinInformacion
	default:
		return StatusDesconocido
	}
}

// NetDebt clamps snapshot balance minus lifetime payments at zero. An
// overpaid invoice never goes negative; the overpayment is invisible.
func NetDebt(balance, collected float64) float64 {
	net := balance - collected
	if net < 0 {
		return 0
	}
	return net
}

// Filters narrow reconciliation queries. The executive filter is a membership
// test against the comma- or JSON-encoded executive_email column.
type Filters struct {
	ExecutiveEmail string
	ClientNIT      string
	Tipo           PortfolioType
}

// InvoiceLine is one reconciled invoice in the listing.
type InvoiceLine struct {
	NIT             string              `json:"nit"`
	ClientName      string              `json:"client_name"`
	Documento       string              `json:"documento"`
	DocumentoParts  numfmt.DocumentParts `json:"documento_parts"`
	Fecha           *time.Time          `json:"fecha"`
	Vence           *time.Time          `json:"vence"`
	Dias            *int                `json:"dias"`
	SnapshotBalance float64             `json:"snapshot_balance"`
	CollectedTotal  float64             `json:"collected_total"`
	NetDebt         float64             `json:"net_debt"`
	OverdueAmount   float64             `json:"overdue_amount"`
	Status          InvoiceStatus       `json:"status"`
}

// Summary aggregates the portfolio for a reporting window at the pinned
// snapshot date.
type Summary struct {
	SnapshotDate time.Time `json:"snapshot_date"`
	// ProjectedFromPartials sums snapshot balances not yet due (dias >= 0 or
	// unknown). Despite the name it is not a shipment forecast.
	ProjectedFromPartials float64 `json:"projected_from_partials"`
	CurrentDebt           float64 `json:"current_debt"`
	OverdueDebt           float64 `json:"overdue_debt"`
	TotalCollected        float64 `json:"total_collected"`
}

// ReconRow is a snapshot row joined with client master data and recaudo
// aggregates, the raw material for reconciliation.
type ReconRow struct {
	SnapshotRow
	ClientName        *string
	ExecutiveEmail    *string
	CollectedTotal    float64
	CollectedInWindow float64
}
