package models

const (
	StatusActive    = "Active"
	StatusCancelled = "Cancelled"
)

const (
	PaymentCash  = "Cash"
	PaymentUPI   = "UPI"
	PaymentCard  = "Card"
	PaymentSplit = "Split"
)

// Tenders are the payment modes a split breakdown may use.
var Tenders = []string{PaymentCash, PaymentUPI, PaymentCard}

func IsPaymentMode(mode string) bool {
	switch mode {
	case PaymentCash, PaymentUPI, PaymentCard, PaymentSplit:
		return true
	}
	return false
}

func IsTender(mode string) bool {
	switch mode {
	case PaymentCash, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"

	// DefaultSearchLimit caps settlement search results.
	DefaultSearchLimit = 10

	// DefaultCartTTL время жизни корзины сессии
	DefaultCartTTL = 12 * 60 * 60 // 12 часов в секундах

	DefaultExpenseCategory = "Maintenance"

	// DashboardRecentBookings and DashboardSpaces bound the dashboard lists.
	DashboardRecentBookings = 5
	DashboardSpaces         = 4

	// SpacesCacheTTL время жизни кэша площадок
	SpacesCacheTTL = 5 * 60
)
