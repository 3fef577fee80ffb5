package billing

import "math"

// Paise converts a rupee amount to whole paise. Amount comparisons go through
// this so float noise never decides a reconciliation.
func Paise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// SameAmount reports whether a and b are equal to the paisa.
func SameAmount(a, b float64) bool {
	return Paise(a) == Paise(b)
}

// Round returns amount rounded to the paisa.
func Round(amount float64) float64 {
	return float64(Paise(amount)) / 100
}
