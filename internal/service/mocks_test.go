package service

import (
	"context"
	"io"
	"time"

	"turfdesk/internal/models"
	"turfdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type mockData struct {
	mock.Mock
}

func (m *mockData) GetSpaces(ctx context.Context) ([]models.Space, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Space), args.Error(1)
}
func (m *mockData) CreateSpace(ctx context.Context, s *models.Space) (*models.Space, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Space), args.Error(1)
}
func (m *mockData) UpdateSpace(ctx context.Context, s *models.Space) (*models.Space, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Space), args.Error(1)
}
func (m *mockData) DeleteSpace(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockData) GetBookings(ctx context.Context, date string) ([]models.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockData) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockData) CreateBookingBatch(ctx context.Context, req *models.BatchRequest) ([]models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockData) UpdateBookingPayment(ctx context.Context, id string, u models.PaymentUpdate) (*models.Booking, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockData) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockData) GetExpenses(ctx context.Context) ([]models.Expense, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Expense), args.Error(1)
}
func (m *mockData) CreateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}
func (m *mockData) GetStats(ctx context.Context, start, end string) (*models.Stats, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}
func (m *mockData) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *mockData) Register(ctx context.Context, reg *models.Registration) (*models.Profile, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *mockData) UpdateProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

const (
	slotA = "06:00 PM - 07:00 PM"
	slotB = "07:00 PM - 08:00 PM"
	slotC = "08:00 PM - 09:00 PM"
	day   = "2025-03-01"
)

var court = models.Space{
	ID:           "s1",
	Name:         "Court 1",
	PricePerHour: 500,
	CustomRates:  map[string]float64{slotB: 800},
}

func newDesk(data *mockData, bus *mockBus) (*DeskService, *repository.MemoryCartStore) {
	carts := repository.NewMemoryCartStore(time.Hour)
	svc := NewDeskService(data, carts, bus, 2, models.PaymentCash, testLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return "item-" + string(rune('0'+n))
	}
	return svc, carts
}
