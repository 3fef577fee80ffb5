package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Events are published only after the data service accepted the change.
const (
	EventBookingCreated   = "booking_created"
	EventPaymentRecorded  = "payment_recorded"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEventPayload is the booking snapshot handed to subscribers.
type BookingEventPayload struct {
	BookingID      string   `json:"booking_id"`
	SpaceID        string   `json:"space_id"`
	SpaceName      string   `json:"space_name,omitempty"`
	Date           string   `json:"date"`
	Slots          []string `json:"slots"`
	CustomerName   string   `json:"customer_name"`
	CustomerMobile string   `json:"customer_mobile"`
	TotalAmount    float64  `json:"total_amount"`
	PaidAmount     float64  `json:"paid_amount"`
	PaymentMode    string   `json:"payment_mode"`
	Status         string   `json:"status"`
}

type PaymentEventPayload struct {
	BookingID   string  `json:"booking_id"`
	Amount      float64 `json:"amount"`
	PaymentMode string  `json:"payment_mode"`
	Outstanding float64 `json:"outstanding"`
}

type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

type EventHandler func(event *Event) error

// EventBus is an in-process pub/sub. Handlers run synchronously on the
// publishing goroutine.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

func NewEventBus(logger *zerolog.Logger) *EventBus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. A failing handler is logged
// and does not stop the rest.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("Event handler failed")
		}
	}
}

func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	b.Publish(&event)
	return nil
}

func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}

// AuditHandler logs every committed change once, with the payload fields
// flattened into the log line.
func AuditHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		entry := logger.Info().Str("event", event.Type).Time("at", event.CreatedAt)

		switch event.Type {
		case EventPaymentRecorded:
			var p PaymentEventPayload
			if err := event.Decode(&p); err != nil {
				return err
			}
			entry.Str("booking_id", p.BookingID).
				Float64("amount", p.Amount).
				Str("mode", p.PaymentMode).
				Float64("outstanding", p.Outstanding)
		case EventBookingCreated, EventBookingCancelled:
			var p BookingEventPayload
			if err := event.Decode(&p); err != nil {
				return err
			}
			entry.Str("booking_id", p.BookingID).
				Str("space", p.SpaceName).
				Str("date", p.Date).
				Strs("slots", p.Slots).
				Str("customer", p.CustomerName).
				Float64("total", p.TotalAmount).
				Float64("paid", p.PaidAmount)
		default:
			entry.RawJSON("payload", event.Payload)
		}

		entry.Msg("audit")
		return nil
	}
}
