package numfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		name      string
		amount    float64
		portfolio string
		want      string
	}{
		{"zero", 0, CurrencyNacional, "CERO PESOS M/CTE"},
		{"one peso", 1, CurrencyNacional, "UN PESO M/CTE"},
		{"round thousands", 1000, CurrencyNacional, "MIL PESOS M/CTE"},
		{"whole amount no cents clause", 1234, CurrencyNacional, "MIL DOSCIENTOS TREINTA Y CUATRO PESOS M/CTE"},
		{"cents clause", 1234.56, CurrencyNacional, "MIL DOSCIENTOS TREINTA Y CUATRO PESOS M/CTE CON 56/100"},
		{"single digit cents padded", 10.05, CurrencyNacional, "DIEZ PESOS M/CTE CON 05/100"},
		{"hundred exact", 100, CurrencyNacional, "CIEN PESOS M/CTE"},
		{"hundred and one", 101, CurrencyNacional, "CIENTO UNO PESOS M/CTE"},
		{"twenties", 21000, CurrencyNacional, "VEINTIUN MIL PESOS M/CTE"},
		{"one million", 1000000, CurrencyNacional, "UN MILLON PESOS M/CTE"},
		{"many millions", 2500000, CurrencyNacional, "DOS MILLONES QUINIENTOS MIL PESOS M/CTE"},
		{"international", 350.10, CurrencyInternacional, "TRESCIENTOS CINCUENTA DOLARES AMERICANOS CON 10/100"},
		{"one dollar", 1, CurrencyInternacional, "UN DOLAR AMERICANO"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AmountInWords(tc.amount, tc.portfolio))
		})
	}
}

func TestSplitInvoiceNumber(t *testing.T) {
	p := SplitInvoiceNumber("FV-1-000000123-A")
	require.Equal(t, DocumentParts{Prefix: "FV-1-000000", Highlight: "123", Suffix: "-A"}, p)

	p = SplitInvoiceNumber("no-match")
	require.Equal(t, DocumentParts{Prefix: "no-match"}, p)

	p = SplitInvoiceNumber("")
	require.Equal(t, DocumentParts{}, p)
}
