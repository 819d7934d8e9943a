// Package trm ingests the official USD/COP market exchange rate (Tasa
// Representativa del Mercado) from the public endpoint and serves the latest
// stored value.
package trm

import "time"

// Rate is one published exchange rate with its validity window.
type Rate struct {
	ID           int64     `json:"id"`
	Valor        float64   `json:"valor"`
	VigenteDesde time.Time `json:"vigente_desde"`
	VigenteHasta time.Time `json:"vigente_hasta"`
	CreatedAt    time.Time `json:"created_at"`
}
