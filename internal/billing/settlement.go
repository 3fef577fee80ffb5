package billing

import (
	"fmt"
	"sort"
	"strings"

	"turfdesk/internal/models"
)

type SettlementState string

const (
	StateCancelled       SettlementState = "cancelled"
	StateActiveSettled   SettlementState = "settled"
	StateActiveUnsettled SettlementState = "unsettled"
)

// Outstanding is what the customer still owes. Zero or less means settled.
func Outstanding(b *models.Booking) float64 {
	return Round(b.TotalAmount - b.PaidAmount)
}

func State(b *models.Booking) SettlementState {
	switch {
	case b.IsCancelled():
		return StateCancelled
	case Paise(Outstanding(b)) <= 0:
		return StateActiveSettled
	default:
		return StateActiveUnsettled
	}
}

// CanSettle gates the payment flow. Cancelled bookings never reach the data
// service.
func CanSettle(b *models.Booking) error {
	switch State(b) {
	case StateCancelled:
		return fmt.Errorf("%w: %s", ErrBookingCancelled, b.ID)
	case StateActiveSettled:
		return fmt.Errorf("%w: %s", ErrAlreadySettled, b.ID)
	}
	return nil
}

// ApplyPayment previews a booking after a further payment. The server record is
// not touched.
func ApplyPayment(b models.Booking, amount float64) models.Booking {
	b.PaidAmount = Round(b.PaidAmount + amount)
	return b
}

func SplitSum(breakdown map[string]float64) float64 {
	var sum float64
	for _, amount := range breakdown {
		sum += amount
	}
	return Round(sum)
}

// ValidateSplit checks a split-tender breakdown against the amount it must
// cover. Tenders are Cash, UPI and Card only; the sum has to match to the paisa.
func ValidateSplit(breakdown map[string]float64, target float64) error {
	if len(breakdown) == 0 {
		return fmt.Errorf("%w: empty breakdown", ErrSplitMismatch)
	}
	for tender, amount := range breakdown {
		if !models.IsTender(tender) {
			return fmt.Errorf("%w: unknown tender %q", ErrInvalidPayment, tender)
		}
		if amount < 0 {
			return fmt.Errorf("%w: negative %s amount", ErrInvalidPayment, tender)
		}
	}
	if sum := SplitSum(breakdown); !SameAmount(sum, target) {
		return fmt.Errorf("%w: breakdown %.2f, expected %.2f", ErrSplitMismatch, sum, target)
	}
	return nil
}

// ValidatePayment checks the payment part of a checkout. In split mode paid is
// forced to payable and the breakdown must reconcile; other modes take any
// non-negative paid amount.
func ValidatePayment(mode string, paid float64, details map[string]float64, payable float64) (float64, error) {
	if !models.IsPaymentMode(mode) {
		return 0, fmt.Errorf("%w: unknown payment mode %q", ErrInvalidPayment, mode)
	}
	if mode == models.PaymentSplit {
		if err := ValidateSplit(details, payable); err != nil {
			return 0, err
		}
		return Round(payable), nil
	}
	if paid < 0 {
		return 0, fmt.Errorf("%w: paid amount %.2f", ErrInvalidPayment, paid)
	}
	return Round(paid), nil
}

// Search matches bookings by customer name (case-insensitive) or mobile
// substring. Collection order is kept; an empty query matches nothing.
func Search(bookings []models.Booking, query string, limit int) []models.Booking {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}

	needle := strings.ToLower(query)
	var out []models.Booking
	for i := range bookings {
		b := &bookings[i]
		if strings.Contains(strings.ToLower(b.CustomerName), needle) || strings.Contains(b.CustomerMobile, query) {
			out = append(out, *b)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

type DaySummary struct {
	Bookings  int     `json:"bookings"`
	Cancelled int     `json:"cancelled"`
	Unsettled int     `json:"unsettled"`
	Revenue   float64 `json:"revenue"`
	Collected float64 `json:"collected"`
	Pending   float64 `json:"pending"`
}

// Summarize aggregates active bookings for the dashboard. Cancelled bookings
// are only counted.
func Summarize(bookings []models.Booking) DaySummary {
	var s DaySummary
	for i := range bookings {
		b := &bookings[i]
		if b.IsCancelled() {
			s.Cancelled++
			continue
		}
		s.Bookings++
		s.Revenue += b.TotalAmount
		s.Collected += b.PaidAmount
		if out := Outstanding(b); out > 0 {
			s.Pending += out
			s.Unsettled++
		}
	}
	s.Revenue = Round(s.Revenue)
	s.Collected = Round(s.Collected)
	s.Pending = Round(s.Pending)
	return s
}

// Recent returns up to n bookings, newest first by creation time.
func Recent(bookings []models.Booking, n int) []models.Booking {
	out := make([]models.Booking, len(bookings))
	copy(out, bookings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
