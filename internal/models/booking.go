package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// SpaceRef is the space a booking points at. The data service sends either a
// bare id or the populated space document.
type SpaceRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *SpaceRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = SpaceRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = SpaceRef{ID: id}
		return nil
	}

	type plain SpaceRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = SpaceRef(p)
	return nil
}

type Booking struct {
	ID             string             `json:"_id"`
	Space          SpaceRef           `json:"space"`
	Date           string             `json:"date"`
	Slots          []string           `json:"slots"`
	CustomerName   string             `json:"customerName"`
	CustomerMobile string             `json:"customerMobile"`
	CustomerEmail  string             `json:"customerEmail,omitempty"`
	TotalAmount    float64            `json:"totalAmount"`
	PaidAmount     float64            `json:"paidAmount"`
	Discount       float64            `json:"discount,omitempty"`
	PaymentMode    string             `json:"paymentMode"`
	PaymentDetails map[string]float64 `json:"paymentDetails,omitempty"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"createdAt,omitempty"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// BatchItem is one cart line as the data service expects it.
type BatchItem struct {
	Space     string   `json:"space"`
	SpaceName string   `json:"spaceName,omitempty"`
	Date      string   `json:"date"`
	Slots     []string `json:"slots"`
	Amount    float64  `json:"amount"`
}

// BatchRequest commits a set of cart lines for one customer as one bill.
type BatchRequest struct {
	Items          []BatchItem        `json:"items"`
	CustomerName   string             `json:"customerName"`
	CustomerMobile string             `json:"customerMobile"`
	CustomerEmail  string             `json:"customerEmail,omitempty"`
	TotalAmount    float64            `json:"totalAmount"`
	PaymentMode    string             `json:"paymentMode"`
	PaymentDetails map[string]float64 `json:"paymentDetails,omitempty"`
	PaidAmount     float64            `json:"paidAmount"`
	Discount       float64            `json:"discount"`
}

type PaymentUpdate struct {
	Amount      float64 `json:"amount"`
	PaymentMode string  `json:"paymentMode"`
}

// Day trims a timestamp such as "2024-06-01T00:00:00.000Z" down to its
// YYYY-MM-DD date. Other strings come back unchanged.
func Day(date string) string {
	if len(date) > len(DateLayout) && date[4] == '-' && date[7] == '-' {
		return date[:len(DateLayout)]
	}
	return date
}
