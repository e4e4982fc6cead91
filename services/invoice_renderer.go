package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/utils"
)

const qrSize = 160

// InvoiceRenderer turns a booking into a standalone printable HTML invoice.
// Render is pure: the same booking and issue time give the same document.
type InvoiceRenderer struct {
	CompanyName    string
	CompanyAddress string
	tmpl           *template.Template
}

func NewInvoiceRenderer(companyName, companyAddress string) *InvoiceRenderer {
	return &InvoiceRenderer{
		CompanyName:    companyName,
		CompanyAddress: companyAddress,
		tmpl:           template.Must(template.New("invoice").Parse(invoiceTemplate)),
	}
}

// InvoiceNumber is the first eight characters of the booking id, uppercased
func InvoiceNumber(bookingID string) string {
	if len(bookingID) > 8 {
		bookingID = bookingID[:8]
	}
	return strings.ToUpper(bookingID)
}

// InvoiceTotalsFor splits a tax-inclusive rupee amount into base and tax paise
func InvoiceTotalsFor(amount float64) models.InvoiceTotals {
	total := utils.ToMinorUnits(amount)
	base, tax := utils.SplitTaxInclusive(total)
	return models.InvoiceTotals{BasePaise: base, TaxPaise: tax, TotalPaise: total}
}

type invoiceView struct {
	CompanyName    string
	CompanyAddress string
	Number         string
	IssueDate      string
	BookingDate    string
	BookingTime    string
	BillToName     string
	BillToAddress  string
	Description    string
	TaxLabel       string
	Base           string
	Tax            string
	Total          string
	QRCode         template.URL
}

func (r *InvoiceRenderer) Render(b *models.Booking, issuedAt time.Time) (string, models.InvoiceTotals, error) {
	totals := InvoiceTotalsFor(b.Amount)
	number := InvoiceNumber(b.ID)

	qrCode, err := qrDataURI("INV-" + number)
	if err != nil {
		return "", totals, fmt.Errorf("render qr code: %w", err)
	}

	description := b.ServiceName
	if b.Package != "" {
		description += " (" + b.Package + ")"
	}
	billTo := b.UserName
	if billTo == "" {
		billTo = "Customer"
	}

	view := invoiceView{
		CompanyName:    r.CompanyName,
		CompanyAddress: r.CompanyAddress,
		Number:         number,
		IssueDate:      issuedAt.Format("02 Jan 2006"),
		BookingDate:    b.Date,
		BookingTime:    b.Time,
		BillToName:     billTo,
		BillToAddress:  b.Address,
		Description:    description,
		TaxLabel:       fmt.Sprintf("GST (%.0f%%)", utils.GSTRate*100),
		Base:           utils.FormatRupees(totals.BasePaise),
		Tax:            utils.FormatRupees(totals.TaxPaise),
		Total:          utils.FormatRupees(totals.TotalPaise),
		QRCode:         qrCode,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", totals, fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), totals, nil
}

// qrDataURI encodes content as a PNG QR code inlined in a data URI
func qrDataURI(content string) (template.URL, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}
	code, err = barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; margin: 0; padding: 32px; }
.invoice { max-width: 760px; margin: 0 auto; border: 1px solid #e5e7eb; padding: 32px; }
.header { display: flex; justify-content: space-between; align-items: flex-start; }
.company { font-size: 22px; font-weight: bold; }
.muted { color: #6b7280; font-size: 13px; }
h2 { margin: 0 0 4px 0; font-size: 20px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th, td { text-align: left; padding: 10px 8px; border-bottom: 1px solid #e5e7eb; font-size: 14px; }
td.amount, th.amount { text-align: right; }
tr.total td { font-weight: bold; border-top: 2px solid #111827; border-bottom: none; }
.billto { margin-top: 24px; }
.footer { margin-top: 32px; display: flex; justify-content: space-between; align-items: flex-end; }
@media print { body { padding: 0; } .invoice { border: none; } }
</style>
</head>
<body>
<div class="invoice">
  <div class="header">
    <div>
      <div class="company">{{.CompanyName}}</div>
      <div class="muted">{{.CompanyAddress}}</div>
    </div>
    <div>
      <h2>INVOICE</h2>
      <div class="muted">Invoice #: {{.Number}}</div>
      <div class="muted">Issue date: {{.IssueDate}}</div>
    </div>
  </div>
  <div class="billto">
    <div class="muted">Bill to</div>
    <div><strong>{{.BillToName}}</strong></div>
    <div>{{.BillToAddress}}</div>
    <div class="muted">Service scheduled: {{.BookingDate}} {{.BookingTime}}</div>
  </div>
  <table>
    <thead>
      <tr><th>Description</th><th class="amount">Amount (INR)</th></tr>
    </thead>
    <tbody>
      <tr><td>{{.Description}}</td><td class="amount">{{.Base}}</td></tr>
      <tr><td>{{.TaxLabel}}</td><td class="amount">{{.Tax}}</td></tr>
      <tr class="total"><td>Total</td><td class="amount">{{.Total}}</td></tr>
    </tbody>
  </table>
  <div class="footer">
    <div class="muted">
      Amounts are inclusive of GST.
    </div>
    <img src="{{.QRCode}}" width="120" height="120" alt="Invoice {{.Number}}">
  </div>
</div>
</body>
</html>
`
