package models

type Expense struct {
	ID          string  `json:"_id,omitempty"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	PaymentMode string  `json:"paymentMode"`
	Note        string  `json:"note,omitempty"`
}
