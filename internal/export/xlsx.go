package export

import (
	"fmt"
	"strings"

	"turfdesk/internal/billing"
	"turfdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	bookingsSheet = "Bookings"
)

var bookingHeaders = []string{"Date", "Customer", "Mobile", "Space", "Slots", "Total", "Paid", "Balance", "Mode", "Status"}

// ReportXLSX builds the period report as a workbook with a Summary sheet and
// a Bookings sheet.
func ReportXLSX(stats *models.Stats, start, end string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("error renaming sheet: %w", err)
	}
	if err := writeSummary(f, stats, start, end); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(bookingsSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeBookings(f, stats.RawData.Bookings); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, stats *models.Stats, start, end string) error {
	_ = f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Period: %s - %s", start, end))
	_ = f.MergeCell(summarySheet, "A1", "B1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)

	sectionStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	row := 3
	for _, section := range summarySections(stats) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(summarySheet, cell, section.Title)
		edge, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellStyle(summarySheet, cell, edge, sectionStyle)
		row++

		for _, r := range section.Rows {
			label, _ := excelize.CoordinatesToCellName(1, row)
			value, _ := excelize.CoordinatesToCellName(2, row)
			_ = f.SetCellValue(summarySheet, label, r.Label)
			if r.Count {
				_ = f.SetCellValue(summarySheet, value, int(r.Value))
			} else {
				_ = f.SetCellValue(summarySheet, value, billing.Round(r.Value))
				_ = f.SetCellStyle(summarySheet, value, value, moneyStyle)
			}
			row++
		}
		row++
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 40)
	_ = f.SetColWidth(summarySheet, "B", "B", 18)
	return nil
}

func writeBookings(f *excelize.File, bookings []models.Booking) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	for i, h := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	_ = f.SetCellStyle(bookingsSheet, "A1", last, headerStyle)

	for i := range bookings {
		b := &bookings[i]
		values := []interface{}{
			models.Day(b.Date),
			b.CustomerName,
			b.CustomerMobile,
			spaceName(b),
			strings.Join(b.Slots, ", "),
			b.TotalAmount,
			b.PaidAmount,
			billing.Outstanding(b),
			b.PaymentMode,
			b.Status,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(bookingsSheet, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "C", 14)
	_ = f.SetColWidth(bookingsSheet, "D", "D", 18)
	_ = f.SetColWidth(bookingsSheet, "E", "E", 48)
	_ = f.SetColWidth(bookingsSheet, "F", "J", 12)
	return nil
}
