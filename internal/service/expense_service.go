package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"turfdesk/internal/billing"
	"turfdesk/internal/domain"
	"turfdesk/internal/models"

	"github.com/rs/zerolog"
)

type ExpenseService struct {
	data   domain.DataService
	logger *zerolog.Logger
	now    func() time.Time
}

func NewExpenseService(data domain.DataService, logger *zerolog.Logger) *ExpenseService {
	return &ExpenseService{data: data, logger: logger, now: time.Now}
}

// List returns expenses newest first.
func (s *ExpenseService) List(ctx context.Context) ([]models.Expense, error) {
	expenses, err := s.data.GetExpenses(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return models.Day(expenses[i].Date) > models.Day(expenses[j].Date)
	})
	return expenses, nil
}

// Create fills in today, Maintenance and Cash when date, category or payment
// mode are left blank.
func (s *ExpenseService) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	expense.Title = strings.TrimSpace(expense.Title)
	if err := requireText("title", expense.Title); err != nil {
		return nil, err
	}
	if billing.Paise(expense.Amount) <= 0 {
		return nil, invalidf("expense amount must be positive")
	}
	if expense.Date == "" {
		expense.Date = s.now().Format(models.DateLayout)
	}
	if _, err := parseDate(expense.Date); err != nil {
		return nil, err
	}
	if expense.Category == "" {
		expense.Category = models.DefaultExpenseCategory
	}
	if expense.PaymentMode == "" {
		expense.PaymentMode = models.PaymentCash
	}
	if !models.IsTender(expense.PaymentMode) {
		return nil, invalidf("unknown payment mode %q", expense.PaymentMode)
	}
	expense.Amount = billing.Round(expense.Amount)

	created, err := s.data.CreateExpense(ctx, expense)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("title", created.Title).Float64("amount", created.Amount).Str("category", created.Category).Msg("Expense recorded")
	return created, nil
}
