// Package pdf renders tax invoices with maroto. Documents are built on demand
// and never stored.
package pdf

import (
	"context"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("pdf",
	fx.Provide(
		fx.Annotate(New, fx.As(new(invoicedomain.Renderer))),
	),
)

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

var statusLabels = map[invoicedomain.InvoiceStatus]string{
	invoicedomain.InvoiceStatusPaid:          "PAID",
	invoicedomain.InvoiceStatusPartiallyPaid: "PARTIALLY PAID",
	invoicedomain.InvoiceStatusUnpaid:        "UNPAID",
	invoicedomain.InvoiceStatusCancelled:     "CANCELLED",
}

func (r *Renderer) RenderInvoice(ctx context.Context, company companydomain.Company, invoice invoicedomain.Invoice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	header := col.New(7).Add(text.New(company.Name, props.Text{Size: 16, Style: fontstyle.Bold}))
	top := 8.0
	for _, line := range companyLines(company) {
		header.Add(text.New(line, props.Text{Top: top, Size: 9}))
		top += 4
	}
	m.AddRow(30,
		header,
		col.New(5).Add(
			text.New("TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
			text.New("#"+invoice.Number, props.Text{Top: 7, Size: 11, Style: fontstyle.Bold, Align: align.Right}),
			text.New("Date: "+invoice.CreatedAt.Format("02 Jan 2006"), props.Text{Top: 13, Size: 9, Align: align.Right}),
			text.New(statusLabel(invoice.Status), props.Text{Top: 19, Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
	)

	billTo := col.New(12).Add(
		text.New("BILL TO", props.Text{Size: 8}),
		text.New(invoice.CustomerName, props.Text{Top: 4, Style: fontstyle.Bold}),
	)
	top = 9
	for _, line := range []string{invoice.CustomerEmail, invoice.CustomerPhone} {
		if strings.TrimSpace(line) == "" {
			continue
		}
		billTo.Add(text.New(line, props.Text{Top: top, Size: 9}))
		top += 4
	}
	m.AddRow(22, billTo)

	m.AddRow(8,
		text.NewCol(1, "#", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(5, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for i, item := range invoice.Items {
		m.AddRow(7,
			text.NewCol(1, strconv.Itoa(i+1), props.Text{Size: 9}),
			text.NewCol(5, item.ProductName, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, Money(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, Money(item.TotalPrice), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(6)
	addTotal(m, "Subtotal", Money(invoice.Subtotal), false)
	if invoice.TaxAmount.IsPositive() {
		addTotal(m, "GST ("+invoice.TaxPercent.String()+"%)", Money(invoice.TaxAmount), false)
	}
	if invoice.Discount.IsPositive() {
		addTotal(m, "Discount", "- "+Money(invoice.Discount), false)
	}
	addTotal(m, "Total", Money(invoice.Total), true)

	if notes := strings.TrimSpace(invoice.Notes); notes != "" {
		m.AddRow(16, col.New(12).Add(
			text.New("Notes", props.Text{Size: 8, Style: fontstyle.Bold}),
			text.New(notes, props.Text{Top: 4, Size: 9}),
		))
	}
	m.AddRow(10, text.NewCol(12, "Thank you for your business.", props.Text{Size: 8, Align: align.Center, Top: 4}))

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func addTotal(m core.Maroto, label, value string, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(7,
		col.New(7),
		text.NewCol(3, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func companyLines(company companydomain.Company) []string {
	var lines []string
	if v := strings.TrimSpace(company.Address); v != "" {
		lines = append(lines, v)
	}
	if v := strings.TrimSpace(company.Phone); v != "" {
		lines = append(lines, "Phone: "+v)
	}
	if v := strings.TrimSpace(company.GSTNumber); v != "" {
		lines = append(lines, "GSTIN: "+v)
	}
	return lines
}

func statusLabel(status invoicedomain.InvoiceStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return strings.ToUpper(string(status))
}

// Money formats an amount as "Rs 1,234.50".
func Money(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + "Rs " + b.String() + "." + frac
}
