package numfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"both separators", "1.234,56", 1234.56},
		{"plain decimal", "1234.56", 1234.56},
		{"comma decimal only", "1234,56", 1234.56},
		{"grouped millions", "12.345.678,90", 12345678.90},
		{"currency prefix", "$ 1.500.000", 1500000},
		{"negative", "-42,50", -42.50},
		{"already float", 987.65, 987.65},
		{"already int", int64(300), 300},
		{"empty string", "", 0},
		{"whitespace", "   ", 0},
		{"nil", nil, 0},
		{"garbage", "N/A", 0},
		{"lone separator", "-", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, ParseAmount(tc.in), 1e-9)
		})
	}
}

func TestParseAmountSameQuantityBothLocales(t *testing.T) {
	require.Equal(t, ParseAmount("1.234,56"), ParseAmount("1234.56"))
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "1.234,56", FormatMoney(1234.56))
	require.Equal(t, "0,00", FormatMoney(0))
}
