package billing

import (
	"turfdesk/internal/models"
	"turfdesk/internal/slots"
)

type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotSelected  SlotState = "selected"
	SlotBooked    SlotState = "booked"
	SlotCartHeld  SlotState = "cart"
)

// Blocked holds the slots of one (space, date) that cannot be selected.
type Blocked struct {
	DB   map[string]struct{} `json:"-"`
	Cart map[string]struct{} `json:"-"`
}

func (b Blocked) IsBooked(slot string) bool {
	_, ok := b.DB[slot]
	return ok
}

func (b Blocked) InCart(slot string) bool {
	_, ok := b.Cart[slot]
	return ok
}

func (b Blocked) IsBlocked(slot string) bool {
	return b.IsBooked(slot) || b.InCart(slot)
}

func (b Blocked) Selectable(slot string) bool {
	return !b.IsBlocked(slot)
}

// Union returns every blocked slot in catalog order.
func (b Blocked) Union() []string {
	out := make([]string, 0, len(b.DB)+len(b.Cart))
	seen := make(map[string]struct{}, len(b.DB)+len(b.Cart))
	for _, set := range []map[string]struct{}{b.DB, b.Cart} {
		for slot := range set {
			if _, ok := seen[slot]; ok {
				continue
			}
			seen[slot] = struct{}{}
			out = append(out, slot)
		}
	}
	slots.Sort(out)
	return out
}

// BlockedSlots resolves which slots of spaceID on date are taken, either by a
// non-cancelled booking or by a line already sitting in the session cart.
// Bookings on other dates never block.
func BlockedSlots(spaceID, date string, bookings []models.Booking, cart []models.CartItem) Blocked {
	blocked := Blocked{
		DB:   make(map[string]struct{}),
		Cart: make(map[string]struct{}),
	}

	for i := range bookings {
		b := &bookings[i]
		if b.Space.ID != spaceID || models.Day(b.Date) != date || b.IsCancelled() {
			continue
		}
		for _, slot := range b.Slots {
			blocked.DB[slot] = struct{}{}
		}
	}

	for i := range cart {
		item := &cart[i]
		if item.SpaceID != spaceID || models.Day(item.Date) != date {
			continue
		}
		for _, slot := range item.Slots {
			blocked.Cart[slot] = struct{}{}
		}
	}

	return blocked
}

// OfferedSlots lists the catalog slots a space sells: a slot with no override
// on a space whose base rate is zero is not offered.
func OfferedSlots(space *models.Space) []string {
	all := slots.All()
	if space == nil || space.PricePerHour > 0 {
		return all
	}
	out := make([]string, 0, len(all))
	for _, slot := range all {
		if _, ok := space.Rate(slot); ok {
			out = append(out, slot)
		}
	}
	return out
}

// Pickable keeps the part of a selection that can still be picked: offered
// by the space and neither booked nor held in the cart. Repeats are dropped and
// the result is in catalog order.
func Pickable(space *models.Space, blocked Blocked, selected []string) []string {
	if space == nil {
		return nil
	}
	offered := make(map[string]struct{})
	for _, slot := range OfferedSlots(space) {
		offered[slot] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, slot := range selected {
		if _, ok := offered[slot]; !ok || !blocked.Selectable(slot) {
			continue
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, slot)
	}
	slots.Sort(out)
	return out
}

type SlotView struct {
	Slot  string    `json:"slot"`
	State SlotState `json:"state"`
	Price float64   `json:"price"`
}

// Board renders the offered slots of a space for one date. Each slot lands in
// exactly one state; booked beats cart-held beats selected.
func Board(space *models.Space, date string, bookings []models.Booking, cart []models.CartItem, selected []string) []SlotView {
	if space == nil {
		return nil
	}
	blocked := BlockedSlots(space.ID, date, bookings, cart)

	picked := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		picked[s] = struct{}{}
	}

	offered := OfferedSlots(space)
	views := make([]SlotView, 0, len(offered))
	for _, slot := range offered {
		state := SlotAvailable
		switch {
		case blocked.IsBooked(slot):
			state = SlotBooked
		case blocked.InCart(slot):
			state = SlotCartHeld
		case blocked.Selectable(slot):
			if _, ok := picked[slot]; ok {
				state = SlotSelected
			}
		}
		views = append(views, SlotView{Slot: slot, State: state, Price: RateFor(space, slot)})
	}
	return views
}
