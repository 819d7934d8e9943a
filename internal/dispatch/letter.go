package dispatch

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/numfmt"
)

// letterLine is one invoice row of the rendered notification.
type letterLine struct {
	Prefix    string
	Highlight string
	Suffix    string
	Fecha     string
	Vence     string
	Dias      string
	Saldo     string
}

type letterData struct {
	ClientName     string
	NIT            string
	DueDate        string
	Lines          []letterLine
	Total          string
	TotalInWords   string
	OrderBlock     bool
	ProductsOnHold int
}

var letterTmpl = template.Must(template.New("letter").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
<p>Señores<br><strong>{{.ClientName}}</strong><br>NIT {{.NIT}}</p>
{{if .OrderBlock}}
<p>Les informamos que a la fecha presentan cartera vencida, por lo cual los
despachos pendientes ({{.ProductsOnHold}} producto(s)) quedan bloqueados hasta
regularizar el saldo.</p>
{{else}}
<p>Nos permitimos remitir el estado de su cartera con corte al
{{.DueDate}}.</p>
{{end}}
<table border="1" cellpadding="4" cellspacing="0" style="border-collapse: collapse;">
<tr><th>Documento</th><th>Fecha</th><th>Vence</th><th>Días</th><th>Saldo</th></tr>
{{range .Lines}}
<tr>
<td>{{.Prefix}}<strong>{{.Highlight}}</strong>{{.Suffix}}</td>
<td>{{.Fecha}}</td><td>{{.Vence}}</td><td>{{.Dias}}</td>
<td align="right">{{.Saldo}}</td>
</tr>
{{end}}
<tr><td colspan="4" align="right"><strong>Total</strong></td>
<td align="right"><strong>{{.Total}}</strong></td></tr>
</table>
<p>Son: {{.TotalInWords}}.</p>
<p>Cordialmente,<br>Departamento de Cartera</p>
</body>
</html>`))

// renderLetter builds the HTML body for either notification type from the
// client's snapshot rows. The portfolio of the first row decides the currency
// phrase of the spelled-out total.
func renderLetter(etype EmailType, clientName, nit string, dueDate time.Time, rows []cartera.SnapshotRow, productsOnHold int) (string, error) {
	data := letterData{
		ClientName:     clientName,
		NIT:            nit,
		DueDate:        dueDate.Format("2006-01-02"),
		OrderBlock:     etype == EmailTypeOrderBlock,
		ProductsOnHold: productsOnHold,
	}

	portfolio := numfmt.CurrencyNacional
	if len(rows) > 0 && rows[0].Tipo == cartera.PortfolioInternacional {
		portfolio = numfmt.CurrencyInternacional
	}

	var total float64
	for _, r := range rows {
		saldo := numfmt.ParseAmount(r.SaldoContable)
		total += saldo
		parts := numfmt.SplitInvoiceNumber(r.Documento)
		data.Lines = append(data.Lines, letterLine{
			Prefix:    parts.Prefix,
			Highlight: parts.Highlight,
			Suffix:    parts.Suffix,
			Fecha:     formatDay(r.Fecha),
			Vence:     formatDay(r.Vence),
			Dias:      formatDias(r.Dias),
			Saldo:     numfmt.FormatMoney(saldo),
		})
	}
	data.Total = numfmt.FormatMoney(total)
	data.TotalInWords = numfmt.AmountInWords(total, portfolio)

	var b strings.Builder
	if err := letterTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("dispatch: render letter: %w", err)
	}
	return b.String(), nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDias(d *int) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%d", *d)
}
