package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReceiptLine is one line of a sale receipt
type ReceiptLine struct {
	Name     string
	Quantity decimal.Decimal
	Unit     decimal.Decimal
	Subtotal decimal.Decimal
}

// ReceiptData is bound to the receipt template
type ReceiptData struct {
	StoreName     string
	StorePhone    string
	Number        string
	IssuedAt      time.Time
	CustomerName  string
	SellerName    string
	PaymentMethod string
	Lines         []ReceiptLine
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// SheetLine is one product on the production sheet
type SheetLine struct {
	Product  string
	Quantity decimal.Decimal
	Orders   int64
	InStock  decimal.Decimal
	ToBake   decimal.Decimal
}

// SheetOrder is one order queued for production
type SheetOrder struct {
	Number       string
	CustomerName string
	ScheduledFor *time.Time
	Status       string
	Items        string
	Notes        string
}

// ProductionSheetData is bound to the production sheet template
type ProductionSheetData struct {
	StoreName   string
	Day         time.Time
	GeneratedAt time.Time
	Lines       []SheetLine
	Orders      []SheetOrder
}

// TemplateEngine renders the bakery's printable documents as HTML
type TemplateEngine struct {
	receipt *template.Template
	sheet   *template.Template
}

// NewTemplateEngine parses the built-in templates. Times are shown in loc.
func NewTemplateEngine(loc *time.Location) *TemplateEngine {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"money":    formatMoney,
		"qty":      formatQuantity,
		"title":    titleCase,
		"date":     func(t time.Time) string { return t.In(loc).Format("02/01/2006") },
		"dateTime": func(t time.Time) string { return t.In(loc).Format("02/01/2006 15:04") },
		"clock": func(t *time.Time) string {
			if t == nil {
				return "-"
			}
			return t.In(loc).Format("15:04")
		},
	}
	return &TemplateEngine{
		receipt: template.Must(template.New("receipt").Funcs(funcs).Parse(receiptTemplate)),
		sheet:   template.Must(template.New("sheet").Funcs(funcs).Parse(productionSheetTemplate)),
	}
}

// Receipt renders a POS receipt
func (e *TemplateEngine) Receipt(data ReceiptData) (string, error) {
	return execute(e.receipt, data)
}

// ProductionSheet renders the daily production sheet
func (e *TemplateEngine) ProductionSheet(data ProductionSheetData) (string, error) {
	return execute(e.sheet, data)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// formatMoney formats an amount in bolivianos, e.g. "Bs 1,234.50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	return "Bs " + sign + b.String() + "." + decPart
}

// formatQuantity drops trailing zeros: 3.000 -> "3", 1.250 -> "1.25"
func formatQuantity(d decimal.Decimal) string {
	return d.Round(3).String()
}

func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.ToLower(s))
}

const documentStyle = `
<style>
  body { font-family: "DejaVu Sans", Arial, sans-serif; color: #222; }
  table { width: 100%; border-collapse: collapse; }
  th, td { padding: 2px 4px; text-align: left; }
  .num { text-align: right; }
  .muted { color: #666; }
</style>`

const receiptTemplate = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Number}}</title>` + documentStyle + `
<style>
  @page { size: 80mm auto; margin: 4mm; }
  body { font-size: 11px; width: 72mm; }
  h1 { font-size: 14px; text-align: center; margin: 0; }
  .center { text-align: center; }
  .total td { border-top: 1px dashed #222; font-weight: bold; }
</style></head>
<body>
  <h1>{{.StoreName}}</h1>
  {{if .StorePhone}}<p class="center">{{.StorePhone}}</p>{{end}}
  <p>Nro: {{.Number}}<br>Fecha: {{dateTime .IssuedAt}}<br>
  Cliente: {{if .CustomerName}}{{title .CustomerName}}{{else}}Sin nombre{{end}}
  {{if .SellerName}}<br>Atendido por: {{title .SellerName}}{{end}}</p>
  <table>
    <tr><th>Cant</th><th>Producto</th><th class="num">P/U</th><th class="num">Importe</th></tr>
    {{range .Lines}}<tr><td>{{qty .Quantity}}</td><td>{{title .Name}}</td><td class="num">{{money .Unit}}</td><td class="num">{{money .Subtotal}}</td></tr>
    {{end}}
    <tr><td colspan="3">Subtotal</td><td class="num">{{money .Subtotal}}</td></tr>
    {{if .DeliveryFee.IsPositive}}<tr><td colspan="3">Envio</td><td class="num">{{money .DeliveryFee}}</td></tr>{{end}}
    {{if .Discount.IsPositive}}<tr><td colspan="3">Descuento</td><td class="num">-{{money .Discount}}</td></tr>{{end}}
    <tr class="total"><td colspan="3">TOTAL</td><td class="num">{{money .Total}}</td></tr>
  </table>
  <p>Pago: {{.PaymentMethod}}</p>
  <p class="center muted">Gracias por su compra</p>
</body></html>`

const productionSheetTemplate = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>Produccion {{date .Day}}</title>` + documentStyle + `
<style>
  body { font-size: 12px; }
  h1 { font-size: 18px; margin-bottom: 0; }
  th { border-bottom: 1px solid #222; }
  td { border-bottom: 1px solid #ddd; }
</style></head>
<body>
  <h1>{{.StoreName}}: hoja de produccion</h1>
  <p class="muted">Dia {{date .Day}}, generada {{dateTime .GeneratedAt}}</p>
  <h2>Totales por producto</h2>
  <table>
    <tr><th>Producto</th><th class="num">Pedido</th><th class="num">Pedidos</th><th class="num">En stock</th><th class="num">Hornear</th></tr>
    {{range .Lines}}<tr><td>{{title .Product}}</td><td class="num">{{qty .Quantity}}</td><td class="num">{{.Orders}}</td><td class="num">{{qty .InStock}}</td><td class="num"><strong>{{qty .ToBake}}</strong></td></tr>
    {{else}}<tr><td colspan="5" class="muted">Sin pedidos para este dia</td></tr>
    {{end}}
  </table>
  <h2>Pedidos</h2>
  <table>
    <tr><th>Hora</th><th>Pedido</th><th>Cliente</th><th>Estado</th><th>Detalle</th></tr>
    {{range .Orders}}<tr><td>{{clock .ScheduledFor}}</td><td>{{.Number}}</td><td>{{title .CustomerName}}</td><td>{{.Status}}</td><td>{{.Items}}{{if .Notes}}<br><span class="muted">{{.Notes}}</span>{{end}}</td></tr>
    {{end}}
  </table>
</body></html>`
