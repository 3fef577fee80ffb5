package export

import (
	"bytes"
	"fmt"
	"strings"

	"turfdesk/internal/models"

	"github.com/phpdave11/gofpdf"
)

// ReportPDF renders the financial report for a period: the three summary
// sections on the first page, then every booking as a transaction table.
func ReportPDF(stats *models.Stats, start, end string, biz models.Business) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 15, 14)
	pdf.SetAutoPageBreak(false, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := biz.TurfName
	if title == "" {
		title = "Financial Report"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(14, 18)
	pdf.CellFormat(110, 10, tr(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(140, 17)
	pdf.CellFormat(56, 5, "Generated: "+now().Format("02-01-2006 03:04 PM"), "", 2, "L", false, 0, "")
	pdf.CellFormat(56, 5, fmt.Sprintf("Period: %s to %s", start, end), "", 2, "L", false, 0, "")

	pdf.SetY(40)
	for _, section := range summarySections(stats) {
		reportSection(pdf, section)
	}

	transactions(pdf, tr, stats.RawData.Bookings)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func reportSection(pdf *gofpdf.Fpdf, section summarySection) {
	pdf.SetFillColor(240, 242, 245)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(14)
	pdf.CellFormat(182, 8, section.Title, "", 1, "L", true, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range section.Rows {
		pdf.SetX(18)
		pdf.CellFormat(120, 7, row.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(58, 7, row.text(), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

var txColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 24, "L"},
	{"Customer", 46, "L"},
	{"Space/Slots", 62, "L"},
	{"Mode", 22, "L"},
	{"Amount", 28, "R"},
}

func transactions(pdf *gofpdf.Fpdf, tr func(string) string, bookings []models.Booking) {
	_, pageH := pdf.GetPageSize()
	bottom := pageH - 15

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Booking Transactions", "", 1, "L", false, 0, "")
	txHeader(pdf, false)

	if len(bookings) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No bookings in this period.", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "", 8)
	for i := range bookings {
		b := &bookings[i]
		desc := tr(spaceName(b) + ": " + strings.Join(b.Slots, ", "))
		lines := pdf.SplitLines([]byte(desc), txColumns[2].width-2)
		rowH := float64(len(lines))*4 + 2
		if rowH < 6 {
			rowH = 6
		}

		if pdf.GetY()+rowH > bottom {
			pdf.AddPage()
			txHeader(pdf, true)
			pdf.SetFont("Helvetica", "", 8)
		}

		y := pdf.GetY()
		x := 14.0
		customer := tr(b.CustomerName)
		if len(customer) > 24 {
			customer = customer[:24]
		}
		mode := b.PaymentMode
		if b.IsCancelled() {
			mode = "Cancelled"
		}

		cells := []string{models.Day(b.Date), customer, "", mode, fmt.Sprintf("%.2f", b.TotalAmount)}
		for c, col := range txColumns {
			pdf.SetXY(x, y)
			if c == 2 {
				pdf.MultiCell(col.width, 4, desc, "", "L", false)
			} else {
				pdf.CellFormat(col.width, 4, cells[c], "", 0, col.align, false, 0, "")
			}
			x += col.width
		}
		pdf.SetDrawColor(230, 230, 230)
		pdf.Line(14, y+rowH-1, 196, y+rowH-1)
		pdf.SetXY(14, y+rowH)
	}
}

func txHeader(pdf *gofpdf.Fpdf, cont bool) {
	pdf.SetFillColor(230, 233, 238)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetX(14)
	for i, col := range txColumns {
		title := col.title
		if cont && i == 0 {
			title += " (cont.)"
		}
		pdf.CellFormat(col.width, 7, title, "", 0, col.align, true, 0, "")
	}
	pdf.Ln(8)
}
