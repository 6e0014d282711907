package infra

// pdf.go: printable sales report using go-pdf/fpdf.
// A4 portrait: club header, one row per sale, bold profit total.

import (
	"fmt"
	"io"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// SalesReportData is everything printed on the report.
type SalesReportData struct {
	ClubName    string
	GeneratedAt time.Time
	Sales       []dto.SaleResponse
	TotalProfit decimal.Decimal
}

// WriteSalesReportPDF renders the report to w.
func WriteSalesReportPDF(w io.Writer, data SalesReportData) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	// Core fonts are cp1252; translate so æ, ø and å print.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(data.ClubName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Salgsrapport "+data.GeneratedAt.Format("02.01.2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Table ────────────────────────────────────────────────────────────────
	colTime := contentW * 0.28
	colName := contentW * 0.42
	colQty := contentW * 0.12
	colProfit := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colTime, 6, "Tidspunkt", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colName, 6, "Produkt", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 6, "Antall", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colProfit, 6, "Fortjeneste", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range data.Sales {
		when := s.CreatedAt
		if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
			when = t.Local().Format("02.01.2006 15:04")
		}
		pdf.CellFormat(colTime, 5, when, "", 0, "L", false, 0, "")
		pdf.CellFormat(colName, 5, tr(s.ProductName), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 5, fmt.Sprintf("%d", s.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(colProfit, 5, "kr "+s.Profit.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(data.Sales) == 0 {
		pdf.CellFormat(contentW, 6, "Ingen salg registrert.", "", 1, "L", false, 0, "")
	}

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW-colProfit, 7, "Total fortjeneste", "", 0, "L", false, 0, "")
	pdf.CellFormat(colProfit, 7, "kr "+data.TotalProfit.StringFixed(2), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}
