package numfmt

import "regexp"

// DocumentParts holds the display segments of an invoice number. The middle
// segment is the consecutive highlighted in collection letters.
type DocumentParts struct {
	Prefix    string
	Highlight string
	Suffix    string
}

var documentPattern = regexp.MustCompile(`^(.*?-\d+-000000)(\d+)(-.*)$`)

// SplitInvoiceNumber decomposes numbers shaped like FV-1-000000123-A into
// prefix, highlight and suffix. Anything else passes through as the prefix
// with empty highlight and suffix.
func SplitInvoiceNumber(numero string) DocumentParts {
	m := documentPattern.FindStringSubmatch(numero)
	if m == nil {
		return DocumentParts{Prefix: numero}
	}
	return DocumentParts{Prefix: m[1], Highlight: m[2], Suffix: m[3]}
}
