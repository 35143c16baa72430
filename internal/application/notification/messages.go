package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/shopspring/decimal"
)

// statusText is the customer facing wording of each status
var statusText = map[order.Status]string{
	order.StatusPending:        "pendiente de confirmacion",
	order.StatusConfirmed:      "confirmado",
	order.StatusInProduction:   "en preparacion",
	order.StatusReady:          "listo",
	order.StatusOutForDelivery: "en camino",
	order.StatusDelivered:      "entregado",
	order.StatusCancelled:      "cancelado",
}

// customerStatuses are the transitions the customer hears about by mail
var customerStatuses = map[order.Status]bool{
	order.StatusConfirmed:      true,
	order.StatusInProduction:   true,
	order.StatusReady:          true,
	order.StatusOutForDelivery: true,
	order.StatusDelivered:      true,
	order.StatusCancelled:      true,
}

func money(d decimal.Decimal) string {
	return "Bs " + d.StringFixed(2)
}

var mailTemplates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money": money,
}).Parse(`
{{define "placed"}}<div style="font-family:sans-serif">
<h2>{{.Store}}</h2>
<p>Hola {{.Customer}}, recibimos tu pedido <strong>{{.Number}}</strong>.</p>
<table cellpadding="4">
{{range .Lines}}<tr><td>{{.Quantity}} x {{.ProductName}}</td><td align="right">{{money .Subtotal}}</td></tr>
{{end}}<tr><td><strong>Total</strong></td><td align="right"><strong>{{money .Total}}</strong></td></tr>
</table>
{{if .When}}<p>Entrega programada: {{.When}}</p>{{end}}
<p>Te avisaremos cuando cambie el estado del pedido.</p>
</div>{{end}}
{{define "status"}}<div style="font-family:sans-serif">
<h2>{{.Store}}</h2>
<p>Hola {{.Customer}}, tu pedido <strong>{{.Number}}</strong> esta <strong>{{.Status}}</strong>.</p>
{{if .Reason}}<p>Motivo: {{.Reason}}</p>{{end}}
{{if .Hint}}<p>{{.Hint}}</p>{{end}}
</div>{{end}}
{{define "stock"}}<div style="font-family:sans-serif">
<h2>{{.Title}}</h2>
<table cellpadding="4">
<tr><th align="left">Item</th><th align="right">Cantidad</th><th align="right">Minimo</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td align="right">{{.Quantity}} {{.Unit}}</td><td align="right">{{.MinQuantity}} {{.Unit}}</td></tr>
{{end}}</table>
</div>{{end}}
`))

func renderMail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

// statusHint adds the next step for the customer
func statusHint(to order.Status, f order.Fulfillment) string {
	switch {
	case to == order.StatusReady && f == order.FulfillmentPickup:
		return "Ya puedes pasar a recogerlo."
	case to == order.StatusReady:
		return "Saldra a entrega en breve."
	case to == order.StatusOutForDelivery:
		return "El repartidor va en camino."
	case to == order.StatusDelivered:
		return "Gracias por tu compra."
	}
	return ""
}

func placedText(store string, e *order.OrderPlacedEvent, when string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s, recibimos tu pedido %s en %s.\n\n", e.Customer.Name, e.Number, store)
	for _, l := range e.Lines {
		fmt.Fprintf(&b, "%s x %s  %s\n", l.Quantity, l.ProductName, money(l.Subtotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", money(e.Total))
	if when != "" {
		fmt.Fprintf(&b, "Entrega programada: %s\n", when)
	}
	return b.String()
}

// storeAlertText is the WhatsApp message the shop gets for a new order
func storeAlertText(e *order.OrderPlacedEvent, when string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nuevo pedido %s\nCliente: %s", e.Number, e.Customer.Name)
	if e.Customer.Phone != "" {
		fmt.Fprintf(&b, " (%s)", e.Customer.Phone)
	}
	b.WriteString("\n")
	for _, l := range e.Lines {
		fmt.Fprintf(&b, "- %s x %s\n", l.Quantity, l.ProductName)
	}
	fmt.Fprintf(&b, "Total: %s, pago %s\n", money(e.Total), strings.ToLower(string(e.Payment)))
	if e.Fulfillment == order.FulfillmentDelivery {
		fmt.Fprintf(&b, "Envio a: %s\n", e.Address)
	} else {
		b.WriteString("Recoge en tienda\n")
	}
	if when != "" {
		fmt.Fprintf(&b, "Para: %s\n", when)
	}
	return strings.TrimRight(b.String(), "\n")
}

// readyText is the WhatsApp message a customer gets when the order is ready
func readyText(store string, e *order.OrderStatusChangedEvent) string {
	if e.Fulfillment == order.FulfillmentPickup {
		return fmt.Sprintf("Hola %s, tu pedido %s de %s esta listo. Ya puedes pasar a recogerlo.", e.Customer.Name, e.Number, store)
	}
	return fmt.Sprintf("Hola %s, tu pedido %s de %s esta listo y saldra a entrega en breve.", e.Customer.Name, e.Number, store)
}

func formatWhen(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("02/01/2006 15:04")
}
