// Package payslip renders payslip documents as PDF.
package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Field is a label/value pair in the header block.
type Field struct {
	Label string
	Value string
}

// Line is one amount row in the earnings or deductions table.
type Line struct {
	Label  string
	Amount string
}

type Document struct {
	Title      string
	Period     string
	Details    []Field
	Earnings   []Line
	Deductions []Line
	Totals     []Line
	Footer     string
	CreatedAt  time.Time
}

const (
	labelWidth  = 120.0
	amountWidth = 60.0
	rowHeight   = 7.0
)

// Render lays out doc on a single A4 page.
func Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, false)
	if !doc.CreatedAt.IsZero() {
		pdf.SetCreationDate(doc.CreatedAt)
		pdf.SetModificationDate(doc.CreatedAt)
	}
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, doc.Period)
	pdf.Ln(12)

	for _, f := range doc.Details {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, f.Label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, f.Value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	section(pdf, "Earnings", doc.Earnings)
	section(pdf, "Deductions", doc.Deductions)

	pdf.SetFont("Helvetica", "B", 11)
	for _, l := range doc.Totals {
		pdf.CellFormat(labelWidth, rowHeight+1, l.Label, "T", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, rowHeight+1, l.Amount, "T", 1, "R", false, 0, "")
	}

	if doc.Footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 5, doc.Footer, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, lines []Line) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelWidth+amountWidth, rowHeight, title, "", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		pdf.CellFormat(labelWidth, rowHeight, l.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, l.Amount, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}
