package billing

import (
	"fmt"
	"strings"

	"turfdesk/internal/models"
	"turfdesk/internal/slots"
)

// RateFor prices one slot: the override when the space has one for it,
// the base hourly rate otherwise.
func RateFor(space *models.Space, slot string) float64 {
	if rate, ok := space.Rate(slot); ok {
		return rate
	}
	return space.PricePerHour
}

// PriceSlots sums RateFor over the selection. Labels outside the catalog and
// repeated labels are rejected.
func PriceSlots(space *models.Space, selection []string) (float64, error) {
	if space == nil {
		return 0, ErrInvalidSpace
	}
	seen := make(map[string]struct{}, len(selection))
	var total float64
	for _, slot := range selection {
		if !slots.Contains(slot) {
			return 0, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
		}
		if _, dup := seen[slot]; dup {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateSlot, slot)
		}
		seen[slot] = struct{}{}
		total += RateFor(space, slot)
	}
	return Round(total), nil
}

// AggregateCart is the checkout subtotal: the sum of already priced lines,
// whatever their space or date.
func AggregateCart(items []models.CartItem) float64 {
	var sum float64
	for i := range items {
		sum += items[i].Amount
	}
	return Round(sum)
}

// ComputeTotal returns subtotal minus discount. The discount has to stay
// within [0, subtotal].
func ComputeTotal(subtotal, discount float64) (float64, error) {
	if discount < 0 || Paise(discount) > Paise(subtotal) {
		return 0, fmt.Errorf("%w: discount %.2f, subtotal %.2f", ErrInvalidDiscount, discount, subtotal)
	}
	return Round(subtotal - discount), nil
}

type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Payable  float64 `json:"payable"`
}

func NewQuote(subtotal, discount float64) (Quote, error) {
	payable, err := ComputeTotal(subtotal, discount)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Subtotal: Round(subtotal), Discount: Round(discount), Payable: payable}, nil
}

// ValidateSpace checks a space before it is sent for create or update.
func ValidateSpace(space *models.Space) error {
	if space == nil {
		return ErrInvalidSpace
	}
	if strings.TrimSpace(space.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpace)
	}
	if space.PricePerHour < 0 {
		return fmt.Errorf("%w: base rate %.2f", ErrInvalidPrice, space.PricePerHour)
	}
	for slot, rate := range space.CustomRates {
		if !slots.Contains(slot) {
			return fmt.Errorf("%w: override for %q", ErrUnknownSlot, slot)
		}
		if rate < 0 {
			return fmt.Errorf("%w: override %.2f for %q", ErrInvalidPrice, rate, slot)
		}
	}
	return nil
}
