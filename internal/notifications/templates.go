package notifications

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"storeops/internal/models"
)

const (
	TemplateSaleReceipt        = "sale_receipt"
	TemplateServiceOrderStatus = "service_order_status"
	TemplateInvitation         = "invitation"
	TemplateInvoice            = "invoice"
	TemplateLowStock           = "low_stock"
)

var funcs = template.FuncMap{
	"money": FormatMoney,
	"date": func(t time.Time) string {
		return t.Format("02/01/2006")
	},
	"status": statusLabel,
	"deref":  func(s *string) string { return derefString(s) },
}

// subject and body templates, keyed by name
var messageTemplates = map[string][2]string{
	TemplateSaleReceipt: {
		`{{.Company}} - Comprovante da venda #{{.Sale.Number}}`,
		`Olá{{if .CustomerName}} {{.CustomerName}}{{end}},

Obrigado pela sua compra na {{.Company}}.

Venda #{{.Sale.Number}} em {{date .Sale.CreatedAt}}
{{range .Sale.Items}}- {{.Quantity}} x {{.ProductName}}: {{money .Total}}
{{end}}
Subtotal: {{money .Sale.Subtotal}}
{{- if .Sale.Discount.IsPositive}}
Desconto: {{money .Sale.Discount}}{{end}}
Total: {{money .Sale.Total}}
Pagamento: {{.Sale.PaymentMethod}}
`,
	},
	TemplateServiceOrderStatus: {
		`{{.Company}} - OS #{{.Order.Number}}: {{status .Order.Status}}`,
		`Olá{{if .CustomerName}} {{.CustomerName}}{{end}},

Sua ordem de serviço #{{.Order.Number}} ({{.Order.Equipment}}) está agora: {{status .Order.Status}}.
{{- if eq .Order.Status "COMPLETED"}}
Valor total: {{money .Order.Total}}. O equipamento já pode ser retirado.{{end}}

{{.Company}}
`,
	},
	TemplateInvitation: {
		`Convite para {{.Company}}`,
		`Olá,

Você foi convidado para acessar {{.Company}} com o perfil {{.Role}}.

Para aceitar, acesse: {{.AcceptURL}}

O convite expira em {{date .ExpiresAt}}.
`,
	},
	TemplateInvoice: {
		`{{.Company}} - Fatura {{.Invoice.Number}}`,
		`Olá{{if .CustomerName}} {{.CustomerName}}{{end}},

Segue o resumo da fatura {{.Invoice.Number}}.

Subtotal: {{money .Invoice.Subtotal}}
Impostos: {{money .Invoice.TaxAmount}}
Total: {{money .Invoice.Total}}
Vencimento: {{date .Invoice.DueDate}}
{{- if .Invoice.Notes}}

{{deref .Invoice.Notes}}{{end}}

{{.Company}}
`,
	},
	TemplateLowStock: {
		`{{.Company}} - {{len .Products}} produto(s) com estoque baixo`,
		`Os produtos abaixo estão com estoque igual ou inferior ao mínimo:

{{range .Products}}- {{.Name}} (SKU {{.SKU}}): {{.Stock}} em estoque, mínimo {{.MinStock}}
{{end}}`,
	},
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

var registry = mustCompile()

func mustCompile() map[string]compiled {
	out := make(map[string]compiled, len(messageTemplates))
	for name, parts := range messageTemplates {
		out[name] = compiled{
			subject: template.Must(template.New(name + ".subject").Funcs(funcs).Parse(parts[0])),
			body:    template.Must(template.New(name + ".body").Funcs(funcs).Parse(parts[1])),
		}
	}
	return out
}

// Render executes the named template and returns subject and body.
func Render(name string, data any) (string, string, error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", name, err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", name, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

type SaleReceiptData struct {
	Company      string
	CustomerName string
	Sale         *models.Sale
}

type ServiceOrderStatusData struct {
	Company      string
	CustomerName string
	Order        *models.ServiceOrder
}

type InvitationData struct {
	Company   string
	Role      string
	AcceptURL string
	ExpiresAt time.Time
}

type InvoiceData struct {
	Company      string
	CustomerName string
	Invoice      *models.Invoice
}

type LowStockData struct {
	Company  string
	Products []*models.Product
}

// FormatMoney renders an amount as Brazilian reais, e.g. R$ 1.234,56.
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), frac)
}

func statusLabel(s string) string {
	switch s {
	case models.ServiceOrderOpen:
		return "Aberta"
	case models.ServiceOrderInProgress:
		return "Em andamento"
	case models.ServiceOrderWaitingParts:
		return "Aguardando peças"
	case models.ServiceOrderCompleted:
		return "Concluída"
	case models.ServiceOrderDelivered:
		return "Entregue"
	case models.ServiceOrderCancelled:
		return "Cancelada"
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
