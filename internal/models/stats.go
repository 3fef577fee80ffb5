package models

// Stats mirrors the data service /stats payload for a date range.
type Stats struct {
	Bookings struct {
		TotalBookings      int     `json:"totalBookings"`
		GrossBookingAmount float64 `json:"grossBookingAmount"`
		TotalDiscount      float64 `json:"totalDiscount"`
		CashCollection     float64 `json:"cashCollection"`
		UPICollection      float64 `json:"upiCollection"`
		TotalPaid          float64 `json:"totalPaid"`
	} `json:"bookings"`
	Financials struct {
		Outstanding float64 `json:"outstanding"`
	} `json:"financials"`
	Expenses struct {
		TotalExpenses float64 `json:"totalExpenses"`
	} `json:"expenses"`
	RawData struct {
		Bookings []Booking `json:"bookings"`
	} `json:"rawData"`
}

func (s *Stats) NetBookingAmount() float64 {
	return s.Bookings.GrossBookingAmount - s.Bookings.TotalDiscount
}

// OtherCollection is whatever was paid outside cash and UPI (cards, mostly).
func (s *Stats) OtherCollection() float64 {
	return s.Bookings.TotalPaid - s.Bookings.CashCollection - s.Bookings.UPICollection
}
