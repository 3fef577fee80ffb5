package models

import "time"

// CartItem is a not-yet-submitted line: one space, one date, priced slots.
type CartItem struct {
	ID        string   `json:"id"`
	SpaceID   string   `json:"space"`
	SpaceName string   `json:"spaceName"`
	Date      string   `json:"date"`
	Slots     []string `json:"slots"`
	Amount    float64  `json:"amount"`
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) Remove(itemID string) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) BatchItems() []BatchItem {
	items := make([]BatchItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, BatchItem{
			Space:     it.SpaceID,
			SpaceName: it.SpaceName,
			Date:      it.Date,
			Slots:     append([]string(nil), it.Slots...),
			Amount:    it.Amount,
		})
	}
	return items
}
