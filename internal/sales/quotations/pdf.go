package quotations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var defaultLocale = language.MustParse("en-IN")

var quotationTemplate = template.Must(template.New("quotation").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Q.ReferenceNumber}}</title>
<style>
body{font-family:sans-serif;font-size:12px}
table{width:100%;border-collapse:collapse}
th,td{border:1px solid #ccc;padding:4px}
td.num,th.num{text-align:right}
</style></head>
<body>
<h1>Quotation {{.Q.ReferenceNumber}}</h1>
<p>Date: {{.Date}}{{if .ValidUntil}} &middot; Valid until: {{.ValidUntil}}{{end}}</p>
<p><strong>{{.Q.CustomerSnapshot.Name}}</strong>{{if .Q.CustomerSnapshot.CompanyName}}<br>{{.Q.CustomerSnapshot.CompanyName}}{{end}}
{{if .Q.CustomerSnapshot.Address}}<br>{{.Q.CustomerSnapshot.Address}}{{end}}
{{if .Q.CustomerSnapshot.GSTNumber}}<br>GST: {{.Q.CustomerSnapshot.GSTNumber}}{{end}}</p>
<table>
<thead><tr><th>#</th><th>Product</th><th>SKU</th><th class="num">Qty</th><th class="num">MRP</th><th class="num">Discount %</th><th class="num">Unit price</th><th class="num">Amount</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.No}}</td><td>{{.Name}}</td><td>{{.SKU}}</td><td class="num">{{.Qty}}</td><td class="num">{{.MRP}}</td><td class="num">{{.Discount}}</td><td class="num">{{.Unit}}</td><td class="num">{{.Total}}</td></tr>
{{end}}</tbody>
{{if .Q.ShowTotal}}<tfoot><tr><th colspan="7" class="num">Total</th><th class="num">{{.Total}}</th></tr></tfoot>{{end}}
</table>
{{if .Q.Notes}}<p>{{.Q.Notes}}</p>{{end}}
</body></html>`))

type pdfLine struct {
	No       int
	Name     string
	SKU      string
	Qty      string
	MRP      string
	Discount string
	Unit     string
	Total    string
}

type pdfData struct {
	Q          *Quotation
	Date       string
	ValidUntil string
	Lines      []pdfLine
	Total      string
}

// Document is a rendered file.
type Document struct {
	Filename string
	Content  []byte
}

// RenderHTML lays the quotation out as a printable page with amounts
// formatted for tag.
func RenderHTML(q *Quotation, tag language.Tag) (string, error) {
	p := message.NewPrinter(tag)
	money := func(d decimal.Decimal) string {
		return p.Sprintf("%.2f", d.InexactFloat64())
	}

	data := pdfData{
		Q:     q,
		Date:  q.CreatedAt.Format("02 Jan 2006"),
		Total: money(q.TotalAmount),
	}
	if q.ValidUntil != nil {
		data.ValidUntil = q.ValidUntil.Format("02 Jan 2006")
	}
	for i, it := range q.Items {
		data.Lines = append(data.Lines, pdfLine{
			No:       i + 1,
			Name:     it.ProductName,
			SKU:      it.SKU,
			Qty:      p.Sprintf("%d", it.Quantity),
			MRP:      money(it.MRP),
			Discount: it.Discount.StringFixed(2),
			Unit:     money(it.UnitPrice),
			Total:    money(it.LineTotal),
		})
	}

	var buf bytes.Buffer
	if err := quotationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render quotation html: %w", err)
	}
	return buf.String(), nil
}

// PDF renders the quotation through the configured PDF renderer.
func (s *Service) PDF(ctx context.Context, id uuid.UUID) (*Document, error) {
	if s.opts.Renderer == nil {
		return nil, errors.New("pdf renderer not configured")
	}
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	html, err := RenderHTML(q, defaultLocale)
	if err != nil {
		return nil, err
	}
	content, err := s.opts.Renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("render quotation pdf: %w", err)
	}
	return &Document{Filename: q.ReferenceNumber + ".pdf", Content: content}, nil
}
