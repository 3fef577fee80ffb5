package export

import (
	"fmt"
	"net/url"
	"strings"

	"turfdesk/internal/models"
)

// ShareLink builds a wa.me link carrying the booking confirmation. Mobiles are
// assumed to be Indian numbers without the country code.
func ShareLink(b *models.Booking, turfName string) string {
	msg := fmt.Sprintf("*Booking Confirmed*\n\nTurf: %s\nCustomer: %s\nSpace: %s\nDate: %s\nSlots: %s\nTotal: Rs.%s\nPaid: Rs.%s\n\nThank you!",
		turfName,
		b.CustomerName,
		spaceName(b),
		models.Day(b.Date),
		strings.Join(b.Slots, ", "),
		amount(b.TotalAmount),
		amount(b.PaidAmount),
	)
	return fmt.Sprintf("https://wa.me/91%s?text=%s", mobileDigits(b.CustomerMobile), strings.ReplaceAll(url.QueryEscape(msg), "+", "%20"))
}

func amount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s
}

// mobileDigits keeps the last ten digits, dropping spaces and any +91 prefix.
func mobileDigits(mobile string) string {
	var digits []rune
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}
