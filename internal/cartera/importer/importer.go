// Package importer turns uploaded cartera spreadsheets into snapshot rows.
// The workbook layout is fixed by the upstream accounting export: headers on
// row 7, data from row 8 onwards.
package importer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/numfmt"
)

const (
	headerRow    = 7
	firstDataRow = 8
)

// Importer parses cartera workbooks into snapshot rows.
type Importer struct {
	// Inclusive day-count window; rows outside [DiasMora, DiasCobro] are
	// dropped.
	DiasMora  int
	DiasCobro int
}

// New constructs an Importer with the configured day window.
func New(diasMora, diasCobro int) *Importer {
	return &Importer{DiasMora: diasMora, DiasCobro: diasCobro}
}

// Parse reads the first sheet of the workbook. The portfolio bucket is
// inferred from the filename: anything containing "EXTERIOR" is the
// international portfolio. Cell values come back with formulas resolved to
// their calculated results.
func (imp *Importer) Parse(r io.Reader, filename string, snapshotDate time.Time) ([]cartera.SnapshotRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("importer: workbook has no sheets")
	}
	allRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: read sheet: %w", err)
	}
	if len(allRows) < firstDataRow {
		return nil, fmt.Errorf("importer: sheet shorter than data row %d", firstDataRow)
	}

	headers := make([]string, len(allRows[headerRow-1]))
	for i, h := range allRows[headerRow-1] {
		headers[i] = slug.Make(h)
	}

	tipo := cartera.PortfolioNacional
	if strings.Contains(strings.ToUpper(filename), "EXTERIOR") {
		tipo = cartera.PortfolioInternacional
	}

	batchID := uuid.New()
	var rows []cartera.SnapshotRow
	for _, raw := range allRows[firstDataRow-1:] {
		rec := indexRow(headers, raw)
		row, ok := imp.buildRow(rec, tipo, snapshotDate, batchID)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	sortRows(rows)
	return rows, nil
}

func indexRow(headers []string, raw []string) map[string]string {
	rec := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(raw) {
			rec[h] = strings.TrimSpace(raw[i])
		}
	}
	return rec
}

func (imp *Importer) buildRow(rec map[string]string, tipo cartera.PortfolioType, snapshotDate time.Time, batchID uuid.UUID) (cartera.SnapshotRow, bool) {
	nit := firstNonEmpty(rec, "nit", "identificacion", "nit-cliente")
	if nit == "" {
		return cartera.SnapshotRow{}, false
	}
	// The vencido column is mandatory; rows without it carry no usable
	// balance information regardless of their age.
	vencido, hasVencido := lookupAny(rec, "vencido", "saldo-vencido", "valor-vencido")
	if !hasVencido {
		return cartera.SnapshotRow{}, false
	}

	var dias *int
	if raw := firstNonEmpty(rec, "dias", "dias-vencimiento"); raw != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			dias = &v
		}
	}
	if dias != nil && (*dias < imp.DiasMora || *dias > imp.DiasCobro) {
		return cartera.SnapshotRow{}, false
	}

	return cartera.SnapshotRow{
		NIT:           nit,
		Documento:     firstNonEmpty(rec, "documento", "numero-documento", "factura"),
		Fecha:         parseCellDate(firstNonEmpty(rec, "fecha", "fecha-documento")),
		Vence:         parseCellDate(firstNonEmpty(rec, "vence", "fecha-vencimiento")),
		Dias:          dias,
		SaldoContable: firstNonEmpty(rec, "saldo-contable", "saldo"),
		SaldoVencido:  vencido,
		Tipo:          tipo,
		FechaCartera:  snapshotDate,
		BatchID:       batchID,
	}, true
}

// sortRows pre-sorts each nit group by parsed balance, then orders the full
// result set by dias ascending (unknown dias last).
func sortRows(rows []cartera.SnapshotRow) {
	groups := make(map[string][]int)
	for i, r := range rows {
		groups[r.NIT] = append(groups[r.NIT], i)
	}
	for _, idxs := range groups {
		sort.SliceStable(idxs, func(a, b int) bool {
			return numfmt.ParseAmount(rows[idxs[a]].SaldoContable) < numfmt.ParseAmount(rows[idxs[b]].SaldoContable)
		})
	}
	reordered := make([]cartera.SnapshotRow, 0, len(rows))
	seen := make(map[string]bool)
	for _, r := range rows {
		if seen[r.NIT] {
			continue
		}
		seen[r.NIT] = true
		for _, i := range groups[r.NIT] {
			reordered = append(reordered, rows[i])
		}
	}
	copy(rows, reordered)

	sort.SliceStable(rows, func(a, b int) bool {
		da, db := rows[a].Dias, rows[b].Dias
		switch {
		case da == nil:
			return false
		case db == nil:
			return true
		default:
			return *da < *db
		}
	})
}

func firstNonEmpty(rec map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func lookupAny(rec map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// excelEpoch matches the workbook's serial dates including the 1900
// leap-year bug: day 2 maps to 1900-01-01.
var excelEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "01-02-06", "2006-01-02 15:04:05"}

func parseCellDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t := excelEpoch.AddDate(0, 0, int(serial)-2)
		return &t
	}
	return nil
}
