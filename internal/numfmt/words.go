package numfmt

import (
	"fmt"
	"math"
	"strings"
)

// Portfolio buckets for the currency phrase appended by AmountInWords.
const (
	CurrencyNacional      = "nacional"
	CurrencyInternacional = "internacional"
)

var (
	unidades = []string{"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}
	especial = map[int64]string{
		10: "DIEZ", 11: "ONCE", 12: "DOCE", 13: "TRECE", 14: "CATORCE", 15: "QUINCE",
		16: "DIECISEIS", 17: "DIECISIETE", 18: "DIECIOCHO", 19: "DIECINUEVE",
		20: "VEINTE", 21: "VEINTIUNO", 22: "VEINTIDOS", 23: "VEINTITRES", 24: "VEINTICUATRO",
		25: "VEINTICINCO", 26: "VEINTISEIS", 27: "VEINTISIETE", 28: "VEINTIOCHO", 29: "VEINTINUEVE",
	}
	decenas  = []string{"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}
	centenas = []string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}
)

// AmountInWords spells out a monetary amount in Spanish. The currency phrase
// depends on the portfolio bucket and a cents clause is appended only when the
// decimal part is not 00. Output parity with the legacy collection letters.
func AmountInWords(amount float64, portfolio string) string {
	if amount < 0 {
		amount = -amount
	}
	entero := int64(math.Floor(amount))
	centavos := int64(math.Round((amount - float64(entero)) * 100))
	if centavos == 100 {
		entero++
		centavos = 0
	}

	var b strings.Builder
	b.WriteString(spellInteger(entero))
	switch portfolio {
	case CurrencyInternacional:
		if entero == 1 {
			b.WriteString(" DOLAR AMERICANO")
		} else {
			b.WriteString(" DOLARES AMERICANOS")
		}
	default:
		if entero == 1 {
			b.WriteString(" PESO M/CTE")
		} else {
			b.WriteString(" PESOS M/CTE")
		}
	}
	if centavos != 0 {
		b.WriteString(fmt.Sprintf(" CON %02d/100", centavos))
	}
	return b.String()
}

func spellInteger(n int64) string {
	if n == 0 {
		return "CERO"
	}
	var parts []string
	if n >= 1_000_000 {
		millones := n / 1_000_000
		if millones == 1 {
			parts = append(parts, "UN MILLON")
		} else {
			parts = append(parts, apocope(spellUnderMillion(millones))+" MILLONES")
		}
		n %= 1_000_000
	}
	if n > 0 {
		parts = append(parts, spellUnderMillion(n))
	}
	return strings.Join(parts, " ")
}

func spellUnderMillion(n int64) string {
	var parts []string
	if n >= 1000 {
		miles := n / 1000
		if miles == 1 {
			parts = append(parts, "MIL")
		} else {
			parts = append(parts, apocope(spellUnderThousand(miles))+" MIL")
		}
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, spellUnderThousand(n))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ")
}

func spellUnderThousand(n int64) string {
	if n == 100 {
		return "CIEN"
	}
	var parts []string
	if n >= 100 {
		parts = append(parts, centenas[n/100])
		n %= 100
	}
	if n > 0 {
		parts = append(parts, spellUnderHundred(n))
	}
	return strings.Join(parts, " ")
}

func spellUnderHundred(n int64) string {
	if n < 10 {
		return unidades[n]
	}
	if s, ok := especial[n]; ok {
		return s
	}
	d, u := n/10, n%10
	if u == 0 {
		return decenas[d]
	}
	return decenas[d] + " Y " + unidades[u]
}

// apocope drops the final O of UNO when it multiplies MIL or MILLONES
// ("VEINTIUN MIL", not "VEINTIUNO MIL").
func apocope(s string) string {
	if strings.HasSuffix(s, "UNO") {
		return strings.TrimSuffix(s, "O")
	}
	return s
}
