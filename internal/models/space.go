package models

type Space struct {
	ID           string             `json:"_id"`
	Name         string             `json:"name"`
	PricePerHour float64            `json:"pricePerHour"`
	CustomRates  map[string]float64 `json:"customRates,omitempty"`
}

// Rate returns the override for slot, if one is configured.
func (s *Space) Rate(slot string) (float64, bool) {
	if s.CustomRates == nil {
		return 0, false
	}
	rate, ok := s.CustomRates[slot]
	return rate, ok
}
