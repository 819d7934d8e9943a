// Package recaudos is the append-only ledger of payments received per
// invoice number. There is no foreign key to the cartera snapshot: the join
// is by raw numero_factura string equality, so formatting drift between the
// two sources silently drops matches. That strictness is preserved as-is.
package recaudos

import "time"

// Recaudo is one collections record. ValorCancelado is locale-formatted text
// decoded only through numfmt.ParseAmount. Multiple records per invoice are
// normal (partial payments).
type Recaudo struct {
	ID             int64     `json:"id"`
	NumeroFactura  string    `json:"numero_factura"`
	FechaRecaudo   time.Time `json:"fecha_recaudo"`
	ValorCancelado string    `json:"valor_cancelado"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateInput carries the writable recaudo fields.
type CreateInput struct {
	NumeroFactura  string    `json:"numero_factura" validate:"required"`
	FechaRecaudo   time.Time `json:"fecha_recaudo" validate:"required"`
	ValorCancelado string    `json:"valor_cancelado" validate:"required"`
}
