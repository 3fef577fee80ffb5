// Package export renders invoices and financial reports for printing and
// sharing.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"turfdesk/internal/models"
)

const (
	FormatThermal = "thermal"
	FormatA4      = "a4"
	FormatA5      = "a5"
)

var ErrUnknownFormat = errors.New("unknown invoice format")

var now = time.Now

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

func spaceName(b *models.Booking) string {
	if b.Space.Name != "" {
		return b.Space.Name
	}
	return "Turf Space"
}

// SaveFile writes data under dir, creating it when needed, and returns the
// full path.
func SaveFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

// InvoiceFileName mirrors what the desk prints: customer name and issue day.
func InvoiceFileName(b *models.Booking) string {
	name := strings.Join(strings.Fields(b.CustomerName), "_")
	if name == "" {
		name = b.ID
	}
	return fmt.Sprintf("Invoice_%s_%s.pdf", name, now().Format("20060102"))
}

func ReportFileName(start, end, ext string) string {
	return fmt.Sprintf("Report_%s_to_%s.%s", start, end, ext)
}

type summaryRow struct {
	Label string
	Value float64
	Count bool
}

type summarySection struct {
	Title string
	Rows  []summaryRow
}

// summarySections lays out the headline figures shared by the PDF and the
// spreadsheet.
func summarySections(stats *models.Stats) []summarySection {
	b := stats.Bookings
	return []summarySection{
		{
			Title: "Booking Summary",
			Rows: []summaryRow{
				{Label: "Total Bookings Count", Value: float64(b.TotalBookings), Count: true},
				{Label: "Gross Booking Value", Value: b.GrossBookingAmount},
				{Label: "Discounts Given", Value: -b.TotalDiscount},
				{Label: "Net Booking Value (After Discount)", Value: stats.NetBookingAmount()},
			},
		},
		{
			Title: "Collections & Payments",
			Rows: []summaryRow{
				{Label: "Cash Collection", Value: b.CashCollection},
				{Label: "UPI Collection", Value: b.UPICollection},
				{Label: "Card/Other Collection", Value: stats.OtherCollection()},
				{Label: "Total Collections (Paid)", Value: b.TotalPaid},
				{Label: "Outstanding / Unpaid", Value: stats.Financials.Outstanding},
			},
		},
		{
			Title: "Expenditure",
			Rows: []summaryRow{
				{Label: "Total Expenses", Value: stats.Expenses.TotalExpenses},
			},
		},
	}
}

func (r summaryRow) text() string {
	if r.Count {
		return fmt.Sprintf("%d", int(r.Value))
	}
	if r.Value < 0 {
		return "- " + money(-r.Value)
	}
	return money(r.Value)
}
