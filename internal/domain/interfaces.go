package domain

import (
	"context"

	"turfdesk/internal/models"
)

// DataService is the remote system of record for spaces, bookings, expenses
// and stats. Every method is a single round-trip; nothing is retried.
type DataService interface {
	GetSpaces(ctx context.Context) ([]models.Space, error)
	CreateSpace(ctx context.Context, space *models.Space) (*models.Space, error)
	UpdateSpace(ctx context.Context, space *models.Space) (*models.Space, error)
	DeleteSpace(ctx context.Context, id string) error

	GetBookings(ctx context.Context, date string) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBookingBatch(ctx context.Context, req *models.BatchRequest) ([]models.Booking, error)
	UpdateBookingPayment(ctx context.Context, id string, update models.PaymentUpdate) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)

	GetExpenses(ctx context.Context) ([]models.Expense, error)
	CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error)

	GetStats(ctx context.Context, startDate, endDate string) (*models.Stats, error)

	Login(ctx context.Context, email, password string) (*models.Profile, error)
	Register(ctx context.Context, reg *models.Registration) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// CartStore keeps the per-session cart. GetCart returns nil, nil when the
// session has no cart.
type CartStore interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, sessionID string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
