package export

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"turfdesk/internal/billing"
	"turfdesk/internal/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const qrImageName = "upi-qr"

// Invoice renders a booking bill. Thermal is an 80x200mm receipt; a4 and a5
// are full pages. A UPI QR for the balance is printed when something is still
// due and the business has a UPI id.
// Text goes through the cp1252 translator of the core fonts; characters it
// cannot map are replaced.
func Invoice(b *models.Booking, format string, biz models.Business) ([]byte, error) {
	var pdf *gofpdf.Fpdf
	switch strings.ToLower(format) {
	case FormatThermal:
		pdf = gofpdf.NewCustom(&gofpdf.InitType{
			OrientationStr: "P",
			UnitStr:        "mm",
			Size:           gofpdf.SizeType{Wd: 80, Ht: 200},
		})
		pdf.SetMargins(5, 8, 5)
		pdf.SetAutoPageBreak(true, 5)
		pdf.AddPage()
		thermalInvoice(pdf, b, biz)
	case FormatA4, FormatA5:
		size := "A4"
		if strings.EqualFold(format, FormatA5) {
			size = "A5"
		}
		pdf = gofpdf.New("P", "mm", size, "")
		pdf.SetMargins(15, 15, 15)
		pdf.AddPage()
		pageInvoice(pdf, b, biz)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

func thermalInvoice(pdf *gofpdf.Fpdf, b *models.Booking, biz models.Business) {
	const width = 70.0
	issued := now()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := biz.TurfName
	if title == "" {
		title = "Turf Invoice"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(width, 6, tr(title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if biz.Address != "" {
		pdf.MultiCell(width, 4, tr(biz.Address), "", "C", false)
	}
	if biz.Phone != "" {
		pdf.CellFormat(width, 5, tr("Ph: "+biz.Phone), "", 1, "C", false, 0, "")
	}
	rule(pdf, width)

	pdf.CellFormat(width, 5, "Date: "+issued.Format("02 Jan 2006 03:04 PM"), "", 1, "L", false, 0, "")
	pdf.CellFormat(width, 5, tr("Customer: "+b.CustomerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(width, 5, tr("Mobile: "+b.CustomerMobile), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(width-20, 5, "Description", "", 0, "L", false, 0, "")
	pdf.CellFormat(20, 5, "Amount", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	rule(pdf, width)

	pdf.CellFormat(width-20, 5, tr(fmt.Sprintf("%s (%s)", spaceName(b), models.Day(b.Date))), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(20, 5, fmt.Sprintf("%.2f", b.TotalAmount), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(width-20, 4, tr(strings.Join(b.Slots, ", ")), "", "L", false)
	rule(pdf, width)

	pdf.SetFont("Helvetica", "B", 9)
	totals(pdf, b, width, 5)

	qr(pdf, b, biz, (80-30)/2.0, pdf.GetY()+2, 30)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(width, 5, "Thank you for booking!", "", 1, "C", false, 0, "")
}

func pageInvoice(pdf *gofpdf.Fpdf, b *models.Booking, biz models.Business) {
	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right
	issued := now()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFillColor(245, 247, 250)
	pdf.Rect(0, 0, pageW, 40, "F")

	title := biz.TurfName
	if title == "" {
		title = "INVOICE"
	}
	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(left, 15)
	pdf.CellFormat(width/2, 10, tr(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	infoX := left + width/2
	pdf.SetXY(infoX, 12)
	for _, line := range []string{biz.Address, phoneLine(biz.Phone), "Date: " + issued.Format("02 Jan 2006")} {
		if line == "" {
			continue
		}
		pdf.SetX(infoX)
		pdf.CellFormat(width/2, 5, tr(line), "", 1, "R", false, 0, "")
	}

	pdf.SetXY(left, 50)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(width, 7, "BILL TO", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(40, 40, 40)
	pdf.CellFormat(width, 7, tr(b.CustomerName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(width, 5, tr(b.CustomerMobile), "", 1, "L", false, 0, "")
	if b.CustomerEmail != "" {
		pdf.CellFormat(width, 5, tr(b.CustomerEmail), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	descW, amountW := width*0.4, width*0.2
	slotsW := width - descW - amountW

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(descW, 9, "DESCRIPTION", "", 0, "L", true, 0, "")
	pdf.CellFormat(slotsW, 9, "SLOTS", "", 0, "L", true, 0, "")
	pdf.CellFormat(amountW, 9, "AMOUNT", "", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	rowY := pdf.GetY() + 2
	pdf.SetXY(left, rowY)
	pdf.CellFormat(descW, 6, tr(fmt.Sprintf("%s | %s", spaceName(b), models.Day(b.Date))), "", 0, "L", false, 0, "")
	pdf.SetXY(left+descW, rowY)
	pdf.MultiCell(slotsW, 5, tr(strings.Join(b.Slots, ", ")), "", "L", false)
	endY := pdf.GetY()
	pdf.SetXY(left+descW+slotsW, rowY)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(amountW, 6, fmt.Sprintf("%.2f", b.TotalAmount), "", 1, "R", false, 0, "")
	if endY < rowY+10 {
		endY = rowY + 10
	}

	pdf.SetDrawColor(230, 230, 230)
	pdf.Line(left, endY+2, left+width, endY+2)
	pdf.SetXY(left, endY+8)

	totals(pdf, b, width, 7)

	qr(pdf, b, biz, left, pdf.GetY()+4, 35)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(150, 150, 150)
	footerY := pageH - 30
	pdf.SetXY(left, footerY)
	pdf.CellFormat(width, 5, "Thank you for your business!", "", 1, "L", false, 0, "")
	pdf.CellFormat(width, 5, "Terms & Conditions Apply", "", 1, "L", false, 0, "")
	pdf.SetXY(left, footerY+15)
	pdf.CellFormat(width, 5, "Authorized Signatory", "", 1, "R", false, 0, "")
}

// totals prints the Total, Paid and Balance lines right-aligned.
func totals(pdf *gofpdf.Fpdf, b *models.Booking, width, lineH float64) {
	left, _, _, _ := pdf.GetMargins()
	labelW := width * 0.7
	valueW := width - labelW
	balance := billing.Outstanding(b)

	lines := []struct {
		label string
		value float64
	}{
		{"Total Amount:", b.TotalAmount},
		{"Paid Amount:", b.PaidAmount},
		{"Balance Due:", balance},
	}
	for i, l := range lines {
		pdf.SetX(left)
		if i == len(lines)-1 && balance > 0 {
			pdf.SetTextColor(200, 50, 50)
		}
		pdf.CellFormat(labelW, lineH, l.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, lineH, fmt.Sprintf("%.2f", l.value), "", 1, "R", false, 0, "")
	}
	pdf.SetTextColor(40, 40, 40)
	pdf.Ln(2)
}

// qr embeds a UPI payment QR for the balance. Nothing is drawn when the
// booking is settled or no UPI id is configured.
func qr(pdf *gofpdf.Fpdf, b *models.Booking, biz models.Business, x, y, size float64) {
	payload := upiPayload(b, biz)
	if payload == "" {
		return
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		pdf.SetError(fmt.Errorf("generate upi qr: %w", err))
		return
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
	pdf.ImageOptions(qrImageName, x, y, size, size, false, opts, 0, "")
	pdf.SetY(y + size + 1)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 4, "Scan to pay "+money(billing.Outstanding(b))+" via UPI", "", 1, "L", false, 0, "")
}

func upiPayload(b *models.Booking, biz models.Business) string {
	balance := billing.Outstanding(b)
	if biz.UPIID == "" || billing.Paise(balance) <= 0 || b.IsCancelled() {
		return ""
	}
	q := url.Values{}
	q.Set("pa", biz.UPIID)
	if biz.TurfName != "" {
		q.Set("pn", biz.TurfName)
	}
	q.Set("am", fmt.Sprintf("%.2f", balance))
	q.Set("cu", "INR")
	q.Set("tn", "Booking "+b.ID)
	return "upi://pay?" + q.Encode()
}

func rule(pdf *gofpdf.Fpdf, width float64) {
	left, _, _, _ := pdf.GetMargins()
	y := pdf.GetY() + 1
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(left, y, left+width, y)
	pdf.SetY(y + 2)
}

func phoneLine(phone string) string {
	if phone == "" {
		return ""
	}
	return "Phone: " + phone
}
