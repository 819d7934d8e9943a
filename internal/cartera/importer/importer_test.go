package importer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andina-erp/andina-erp/internal/cartera"
)

// buildWorkbook writes headers on row 7 and data from row 8, matching the
// accounting export layout.
func buildWorkbook(t *testing.T, headers []string, data [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 7)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for rowIdx, row := range data {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, 8+rowIdx)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

var testHeaders = []string{"NIT", "Documento", "Fecha", "Vence", "Dias", "Saldo Contable", "Vencido"}

func TestParseAppliesDayWindow(t *testing.T) {
	snapshotDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	r := buildWorkbook(t, testHeaders, [][]any{
		{"900123456", "FV-1-000000101-BOG", "2026-01-15", "2026-02-14", "-10", "1.250.300,50", "1.250.300,50"},
		{"900123456", "FV-1-000000102-BOG", "2026-02-01", "2026-04-01", "75", "845.000,00", "0"},
		{"900123456", "FV-1-000000103-BOG", "2026-01-01", "2026-01-05", "-65", "10.000,00", "10.000,00"},
	})

	rows, err := New(-60, 60).Parse(r, "CARTERA NACIONAL.xlsx", snapshotDate)
	require.NoError(t, err)
	require.Len(t, rows, 1, "rows with dias outside [-60,60] are dropped")
	require.Equal(t, "FV-1-000000101-BOG", rows[0].Documento)
	require.Equal(t, cartera.PortfolioNacional, rows[0].Tipo)
	require.Equal(t, snapshotDate, rows[0].FechaCartera)
	require.NotNil(t, rows[0].Dias)
	require.Equal(t, -10, *rows[0].Dias)
}

func TestParseDropsRowsWithoutVencido(t *testing.T) {
	r := buildWorkbook(t, testHeaders, [][]any{
		{"900123456", "FV-1-000000101-BOG", "2026-01-15", "2026-02-14", "5", "1.000,00", ""},
		{"900123456", "FV-1-000000102-BOG", "2026-01-15", "2026-02-14", "5", "2.000,00", "2.000,00"},
		{"", "FV-1-000000103-BOG", "2026-01-15", "2026-02-14", "5", "3.000,00", "3.000,00"},
	})

	rows, err := New(-60, 60).Parse(r, "cartera.xlsx", time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1, "missing vencido and missing nit are both dropped")
	require.Equal(t, "FV-1-000000102-BOG", rows[0].Documento)
}

func TestParseExteriorFilenameSelectsInternational(t *testing.T) {
	r := buildWorkbook(t, testHeaders, [][]any{
		{"901555222", "FV-2-000000104-EXP", "2026-01-15", "2026-02-14", "5", "15480.75", "15480.75"},
	})
	rows, err := New(-60, 60).Parse(r, "cartera EXTERIOR marzo.xlsx", time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, cartera.PortfolioInternacional, rows[0].Tipo)
}

func TestParseSortsByDiasAscending(t *testing.T) {
	r := buildWorkbook(t, testHeaders, [][]any{
		{"1", "A", "2026-01-15", "2026-02-14", "30", "1,00", "0"},
		{"2", "B", "2026-01-15", "2026-02-14", "-5", "1,00", "1,00"},
		{"3", "C", "2026-01-15", "2026-02-14", "", "1,00", "1,00"},
		{"4", "D", "2026-01-15", "2026-02-14", "10", "1,00", "0"},
	})
	rows, err := New(-60, 60).Parse(r, "cartera.xlsx", time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "B", rows[0].Documento)
	require.Equal(t, "D", rows[1].Documento)
	require.Equal(t, "A", rows[2].Documento)
	require.Equal(t, "C", rows[3].Documento, "unknown dias sorts last")
}

func TestParseCellDateSerial(t *testing.T) {
	// Serial 2 maps to the 1900 epoch start.
	got := parseCellDate("2")
	require.NotNil(t, got)
	require.Equal(t, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), *got)

	got = parseCellDate("45000")
	require.NotNil(t, got)
	require.Equal(t, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 44998), *got)

	require.Nil(t, parseCellDate(""))
	require.Nil(t, parseCellDate("not a date"))
}

func TestParseRejectsShortSheet(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := New(-60, 60).Parse(bytes.NewReader(buf.Bytes()), "cartera.xlsx", time.Now())
	require.Error(t, err)
}
