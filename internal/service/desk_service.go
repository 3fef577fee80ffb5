package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"turfdesk/internal/billing"
	"turfdesk/internal/domain"
	"turfdesk/internal/events"
	"turfdesk/internal/metrics"
	"turfdesk/internal/models"
	"turfdesk/internal/slots"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DeskService runs the front-desk flows: slot board, cart, checkout, quick
// bill, settlement and cancellation. The data service owns every record; this
// service validates before it calls out and never commits anything partial.
type DeskService struct {
	data        domain.DataService
	carts       domain.CartStore
	eventBus    domain.EventPublisher
	searchLimit int
	defaultMode string
	logger      *zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewDeskService(data domain.DataService, carts domain.CartStore, eventBus domain.EventPublisher, searchLimit int, defaultMode string, logger *zerolog.Logger) *DeskService {
	if searchLimit <= 0 {
		searchLimit = models.DefaultSearchLimit
	}
	if !models.IsPaymentMode(defaultMode) {
		defaultMode = models.PaymentCash
	}
	return &DeskService{
		data:        data,
		carts:       carts,
		eventBus:    eventBus,
		searchLimit: searchLimit,
		defaultMode: defaultMode,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

type BoardView struct {
	Space     models.Space       `json:"space"`
	Date      string             `json:"date"`
	Slots     []billing.SlotView `json:"slots"`
	Blocked   []string           `json:"blocked"`
	Booked    []string           `json:"booked"`
	InCart    []string           `json:"in_cart"`
	Selected  []string           `json:"selected"`
	Selection float64            `json:"selection_price"`
}

type CartView struct {
	SessionID string            `json:"session_id"`
	Items     []models.CartItem `json:"items"`
	Subtotal  float64           `json:"subtotal"`
}

type AddToCartRequest struct {
	SpaceID string   `json:"space_id"`
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
}

// Customer and payment fields shared by checkout and quick bill.
type BillingRequest struct {
	CustomerName   string             `json:"customer_name"`
	CustomerMobile string             `json:"customer_mobile"`
	CustomerEmail  string             `json:"customer_email,omitempty"`
	Discount       float64            `json:"discount"`
	PaymentMode    string             `json:"payment_mode"`
	PaidAmount     float64            `json:"paid_amount"`
	PaymentDetails map[string]float64 `json:"payment_details,omitempty"`
}

type CheckoutRequest = BillingRequest

type QuickBillRequest struct {
	AddToCartRequest
	BillingRequest
}

type CheckoutResult struct {
	Bookings []models.Booking `json:"bookings"`
	Quote    billing.Quote    `json:"quote"`
	Paid     float64          `json:"paid"`
	Balance  float64          `json:"balance"`
}

type DashboardView struct {
	Date     string             `json:"date"`
	Summary  billing.DaySummary `json:"summary"`
	Recent   []models.Booking   `json:"recent"`
	Spaces   []models.Space     `json:"spaces"`
	Bookings int                `json:"bookings_today"`
}

// SlotBoard renders one space on one date for a session, with the price of
// the slots currently picked.
func (s *DeskService) SlotBoard(ctx context.Context, sessionID, spaceID, date string, selected []string) (*BoardView, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	space, err := findSpace(ctx, s.data, spaceID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.data.GetBookings(ctx, date)
	if err != nil {
		return nil, err
	}
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := billing.PriceSlots(space, selected); err != nil {
		return nil, invalid(err)
	}

	// booked or cart-held slots drop out of the selection and its price
	blocked := billing.BlockedSlots(space.ID, date, bookings, cart.Items)
	picked := billing.Pickable(space, blocked, selected)
	price, err := billing.PriceSlots(space, picked)
	if err != nil {
		return nil, invalid(err)
	}

	view := &BoardView{
		Space:     *space,
		Date:      date,
		Slots:     billing.Board(space, date, bookings, cart.Items, picked),
		Blocked:   blocked.Union(),
		Booked:    setToSlice(blocked.DB),
		InCart:    setToSlice(blocked.Cart),
		Selected:  picked,
		Selection: price,
	}
	return view, nil
}

// AddToCart prices the picked slots at add time and stores them as one line.
func (s *DeskService) AddToCart(ctx context.Context, sessionID string, req AddToCartRequest) (*CartView, error) {
	if err := requireText("session", sessionID); err != nil {
		return nil, err
	}
	space, bookings, err := s.prepareSelection(ctx, req)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	blocked := billing.BlockedSlots(space.ID, req.Date, bookings, cart.Items)
	if err := checkSelectable(blocked, req.Slots); err != nil {
		return nil, err
	}

	amount, err := billing.PriceSlots(space, req.Slots)
	if err != nil {
		return nil, invalid(err)
	}

	cart.Items = append(cart.Items, models.CartItem{
		ID:        s.newID(),
		SpaceID:   space.ID,
		SpaceName: space.Name,
		Date:      req.Date,
		Slots:     sortedCopy(req.Slots),
		Amount:    amount,
	})
	cart.UpdatedAt = s.now()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.Debug().
		Str("session", sessionID).
		Str("space", space.Name).
		Str("date", req.Date).
		Strs("slots", req.Slots).
		Float64("amount", amount).
		Msg("Cart line added")
	return newCartView(cart), nil
}

func (s *DeskService) RemoveFromCart(ctx context.Context, sessionID, itemID string) (*CartView, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(itemID) {
		return nil, fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	cart.UpdatedAt = s.now()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return newCartView(cart), nil
}

func (s *DeskService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *DeskService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Checkout commits the whole session cart as one batch. The cart is cleared
// only after the data service accepted it; onCommitted runs right after that.
// On any failure the cart is left as it was.
func (s *DeskService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest, onCommitted func([]models.Booking)) (*CheckoutResult, error) {
	if err := validateCustomer(&req); err != nil {
		return nil, err
	}
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	batch, result, err := s.buildBatch(cart.BatchItems(), billing.AggregateCart(cart.Items), &req)
	if err != nil {
		return nil, err
	}

	created, err := s.data.CreateBookingBatch(ctx, batch)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Int("lines", len(batch.Items)).Msg("Checkout rejected, cart kept")
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("Bookings created but cart could not be cleared")
	}
	s.committed(created, batch, onCommitted)

	result.Bookings = created
	return result, nil
}

// QuickBill books one space and date directly, skipping the cart.
func (s *DeskService) QuickBill(ctx context.Context, req QuickBillRequest, onCommitted func([]models.Booking)) (*CheckoutResult, error) {
	if err := validateCustomer(&req.BillingRequest); err != nil {
		return nil, err
	}
	space, bookings, err := s.prepareSelection(ctx, req.AddToCartRequest)
	if err != nil {
		return nil, err
	}
	blocked := billing.BlockedSlots(space.ID, req.Date, bookings, nil)
	if err := checkSelectable(blocked, req.Slots); err != nil {
		return nil, err
	}
	amount, err := billing.PriceSlots(space, req.Slots)
	if err != nil {
		return nil, invalid(err)
	}

	items := []models.BatchItem{{
		Space:     space.ID,
		SpaceName: space.Name,
		Date:      req.Date,
		Slots:     sortedCopy(req.Slots),
		Amount:    amount,
	}}
	batch, result, err := s.buildBatch(items, amount, &req.BillingRequest)
	if err != nil {
		return nil, err
	}

	created, err := s.data.CreateBookingBatch(ctx, batch)
	if err != nil {
		s.logger.Warn().Err(err).Str("space", space.Name).Msg("Quick bill rejected")
		return nil, err
	}
	s.committed(created, batch, onCommitted)

	result.Bookings = created
	return result, nil
}

// Settle records a further payment against an active booking with a balance.
func (s *DeskService) Settle(ctx context.Context, bookingID string, amount float64, mode string) (*models.Booking, error) {
	if !models.IsTender(mode) {
		return nil, invalidf("payment mode must be one of %s", strings.Join(models.Tenders, ", "))
	}
	if billing.Paise(amount) <= 0 {
		return nil, invalidf("payment amount must be positive")
	}

	booking, err := s.data.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := billing.CanSettle(booking); err != nil {
		return nil, invalid(err)
	}
	projected := billing.ApplyPayment(*booking, amount)
	if billing.Paise(billing.Outstanding(&projected)) < 0 {
		s.logger.Warn().
			Str("booking_id", bookingID).
			Float64("amount", amount).
			Float64("outstanding", billing.Outstanding(booking)).
			Msg("Payment exceeds outstanding balance")
	}

	updated, err := s.data.UpdateBookingPayment(ctx, bookingID, models.PaymentUpdate{Amount: billing.Round(amount), PaymentMode: mode})
	if err != nil {
		return nil, err
	}
	if updated == nil || (updated.TotalAmount == 0 && updated.PaidAmount == 0) {
		// reply carried no amounts
		updated = &projected
	}

	metrics.AddPayment(mode, amount)
	s.publish(events.EventPaymentRecorded, events.PaymentEventPayload{
		BookingID:   bookingID,
		Amount:      billing.Round(amount),
		PaymentMode: mode,
		Outstanding: billing.Outstanding(updated),
	})
	s.logger.Info().Str("booking_id", bookingID).Float64("amount", amount).Str("mode", mode).Msg("Payment recorded")
	return updated, nil
}

// Cancel cancels a booking. Cancelling twice is rejected locally.
func (s *DeskService) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.data.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, invalid(fmt.Errorf("%w: %s", billing.ErrBookingCancelled, bookingID))
	}

	cancelled, err := s.data.CancelBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if cancelled.ID == "" {
		cancelled = booking
		cancelled.Status = models.StatusCancelled
	}

	s.publish(events.EventBookingCancelled, bookingPayload(cancelled))
	s.logger.Info().Str("booking_id", bookingID).Msg("Booking cancelled")
	return cancelled, nil
}

// SearchBookings finds bookings by customer name or mobile. An empty query
// returns nothing without calling out.
func (s *DeskService) SearchBookings(ctx context.Context, query string) ([]models.Booking, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Booking{}, nil
	}
	bookings, err := s.data.GetBookings(ctx, "")
	if err != nil {
		return nil, err
	}
	found := billing.Search(bookings, query, s.searchLimit)
	if found == nil {
		found = []models.Booking{}
	}
	return found, nil
}

func (s *DeskService) ListBookings(ctx context.Context, date string) ([]models.Booking, error) {
	if date != "" {
		if _, err := parseDate(date); err != nil {
			return nil, err
		}
	}
	return s.data.GetBookings(ctx, date)
}

func (s *DeskService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.data.GetBooking(ctx, id)
}

// Dashboard summarizes one day: revenue and pending balance, the latest
// bookings and the first spaces of the catalog.
func (s *DeskService) Dashboard(ctx context.Context, date string) (*DashboardView, error) {
	if date == "" {
		date = s.now().Format(models.DateLayout)
	}
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	bookings, err := s.data.GetBookings(ctx, date)
	if err != nil {
		return nil, err
	}
	spaces, err := s.data.GetSpaces(ctx)
	if err != nil {
		return nil, err
	}
	if len(spaces) > models.DashboardSpaces {
		spaces = spaces[:models.DashboardSpaces]
	}

	return &DashboardView{
		Date:     date,
		Summary:  billing.Summarize(bookings),
		Recent:   billing.Recent(bookings, models.DashboardRecentBookings),
		Spaces:   spaces,
		Bookings: len(bookings),
	}, nil
}

func (s *DeskService) loadCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart = &models.Cart{SessionID: sessionID, Items: []models.CartItem{}}
	}
	return cart, nil
}

// prepareSelection validates a (space, date, slots) pick and loads what the
// availability check needs.
func (s *DeskService) prepareSelection(ctx context.Context, req AddToCartRequest) (*models.Space, []models.Booking, error) {
	if len(req.Slots) == 0 {
		return nil, nil, invalid(billing.ErrEmptySelection)
	}
	if _, err := parseDate(req.Date); err != nil {
		return nil, nil, err
	}
	space, err := findSpace(ctx, s.data, req.SpaceID)
	if err != nil {
		return nil, nil, err
	}

	offered := make(map[string]struct{})
	for _, slot := range billing.OfferedSlots(space) {
		offered[slot] = struct{}{}
	}
	for _, slot := range req.Slots {
		if !slots.Contains(slot) {
			return nil, nil, invalid(fmt.Errorf("%w: %q", billing.ErrUnknownSlot, slot))
		}
		if _, ok := offered[slot]; !ok {
			return nil, nil, invalidf("slot %q is not offered for %s", slot, space.Name)
		}
	}

	bookings, err := s.data.GetBookings(ctx, req.Date)
	if err != nil {
		return nil, nil, err
	}
	return space, bookings, nil
}

func (s *DeskService) buildBatch(items []models.BatchItem, subtotal float64, req *BillingRequest) (*models.BatchRequest, *CheckoutResult, error) {
	quote, err := billing.NewQuote(subtotal, req.Discount)
	if err != nil {
		return nil, nil, invalid(err)
	}

	mode := req.PaymentMode
	if mode == "" {
		mode = s.defaultMode
	}
	paid, err := billing.ValidatePayment(mode, req.PaidAmount, req.PaymentDetails, quote.Payable)
	if err != nil {
		return nil, nil, invalid(err)
	}
	if billing.Paise(paid) > billing.Paise(quote.Payable) {
		s.logger.Warn().Float64("paid", paid).Float64("payable", quote.Payable).Msg("Paid amount exceeds payable")
	}

	var details map[string]float64
	if mode == models.PaymentSplit {
		details = make(map[string]float64, len(req.PaymentDetails))
		for tender, amount := range req.PaymentDetails {
			details[tender] = billing.Round(amount)
		}
	}

	batch := &models.BatchRequest{
		Items:          items,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerMobile: strings.TrimSpace(req.CustomerMobile),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		TotalAmount:    quote.Payable,
		PaymentMode:    mode,
		PaymentDetails: details,
		PaidAmount:     paid,
		Discount:       quote.Discount,
	}
	result := &CheckoutResult{
		Quote:   quote,
		Paid:    paid,
		Balance: billing.Round(quote.Payable - paid),
	}
	return batch, result, nil
}

// committed runs the post-commit steps of a successful batch.
func (s *DeskService) committed(created []models.Booking, batch *models.BatchRequest, onCommitted func([]models.Booking)) {
	if onCommitted != nil {
		onCommitted(created)
	}

	metrics.AddBookings(len(created))
	if batch.PaymentMode == models.PaymentSplit {
		for tender, amount := range batch.PaymentDetails {
			metrics.AddPayment(tender, amount)
		}
	} else {
		metrics.AddPayment(batch.PaymentMode, batch.PaidAmount)
	}

	for i := range created {
		s.publish(events.EventBookingCreated, bookingPayload(&created[i]))
	}
	s.logger.Info().
		Str("customer", batch.CustomerName).
		Int("bookings", len(created)).
		Float64("total", batch.TotalAmount).
		Float64("paid", batch.PaidAmount).
		Str("mode", batch.PaymentMode).
		Msg("Bookings created")
}

func (s *DeskService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func bookingPayload(b *models.Booking) events.BookingEventPayload {
	return events.BookingEventPayload{
		BookingID:      b.ID,
		SpaceID:        b.Space.ID,
		SpaceName:      b.Space.Name,
		Date:           models.Day(b.Date),
		Slots:          b.Slots,
		CustomerName:   b.CustomerName,
		CustomerMobile: b.CustomerMobile,
		TotalAmount:    b.TotalAmount,
		PaidAmount:     b.PaidAmount,
		PaymentMode:    b.PaymentMode,
		Status:         b.Status,
	}
}

func validateCustomer(req *BillingRequest) error {
	if err := requireText("customer name", req.CustomerName); err != nil {
		return err
	}
	return requireText("customer mobile", req.CustomerMobile)
}

func checkSelectable(blocked billing.Blocked, picked []string) error {
	for _, slot := range picked {
		switch {
		case blocked.IsBooked(slot):
			return fmt.Errorf("%w: %s is already booked", ErrSlotBlocked, slot)
		case blocked.InCart(slot):
			return fmt.Errorf("%w: %s is already in the cart", ErrSlotBlocked, slot)
		}
	}
	return nil
}

func newCartView(cart *models.Cart) *CartView {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartView{
		SessionID: cart.SessionID,
		Items:     items,
		Subtotal:  billing.AggregateCart(items),
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for slot := range set {
		out = append(out, slot)
	}
	slots.Sort(out)
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	slots.Sort(out)
	return out
}
