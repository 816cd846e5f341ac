package services

import (
	"bytes"
	"fmt"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/notifications"

	"github.com/jung-kurt/gofpdf"
)

// RenderInvoicePDF lays out an A4 invoice with company header, customer block, lines and totals.
func RenderInvoicePDF(doc *models.InvoiceDocument) ([]byte, error) {
	inv := doc.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	marginX, marginY := 20.0, 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	// Company header
	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Arial", "B", 16)
	pdf.SetXY(marginX, marginY)
	company := "StoreOps"
	if doc.Setting != nil && doc.Setting.CompanyName != "" {
		company = doc.Setting.CompanyName
	}
	pdf.Cell(0, 10, tr(company))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	if s := doc.Setting; s != nil {
		for _, line := range []*string{s.CompanyDocument, s.CompanyAddress, s.CompanyEmail, s.CompanyPhone} {
			if line != nil && *line != "" {
				pdf.Cell(0, 5, tr(*line))
				pdf.Ln(5)
			}
		}
	}
	pdf.Ln(5)

	// Invoice details
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Fatura %s", inv.Number)))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	if inv.IssueDate != nil {
		pdf.Cell(0, 6, tr("Emissão: "+inv.IssueDate.Format("02/01/2006")))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, "Vencimento: "+inv.DueDate.Format("02/01/2006"))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Situação: "+inv.Status))
	pdf.Ln(10)

	// Customer block
	if c := doc.Customer; c != nil {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 8, "Cliente")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, tr(c.Name))
		pdf.Ln(6)
		if c.Document != nil {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %s", common.SafeString(c.DocumentType), *c.Document))
			pdf.Ln(6)
		}
		if c.Address != nil {
			pdf.Cell(0, 6, tr(fmt.Sprintf("%s %s %s", *c.Address, common.SafeString(c.City), common.SafeString(c.State))))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	// Items table
	headers := []string{"Descrição", "Qtd", "Valor unit.", "Total"}
	colWidths := []float64{90, 20, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(colWidths[0], 8, tr(line.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, tr(notifications.FormatMoney(line.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, tr(notifications.FormatMoney(line.Total)), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(140, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, tr(notifications.FormatMoney(inv.Subtotal)), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	if inv.TaxAmount.IsPositive() {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(140, 5, fmt.Sprintf("Impostos (%s%%):", inv.TaxRate.StringFixed(2)), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 5, tr(notifications.FormatMoney(inv.TaxAmount)), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, tr(notifications.FormatMoney(inv.Total)), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	if inv.Notes != nil && *inv.Notes != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(*inv.Notes), "", "L", false)
	}

	// Footer
	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, tr("Documento gerado eletronicamente."))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
