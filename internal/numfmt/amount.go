// Package numfmt decodes the locale-ambiguous monetary text stored in the
// cartera and recaudos tables and renders amounts for outbound documents.
// The persisted columns are untyped text; ParseAmount is the only decoder.
package numfmt

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount converts a raw cell or column value into a float64.
//
// When the string carries both "." and ",", "." is a thousands separator and
// "," the decimal mark ("1.234,56"). A lone "," is a decimal mark. Otherwise
// every character outside [0-9.-] is stripped. Unparseable input yields 0.
func ParseAmount(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return parseAmountString(v)
	default:
		return 0
	}
}

func parseAmountString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}
	s = nonNumeric.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var esCO = message.NewPrinter(language.MustParse("es-CO"))

// FormatMoney renders an amount with Colombian grouping ("1.234,56").
func FormatMoney(amount float64) string {
	return esCO.Sprintf("%v", number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
