// Package slots holds the fixed daily catalog of one-hour slot labels.
// Every screen correlates bookings by these exact strings.
package slots

import "sort"

// Count is the number of slots in a day.
const Count = 24

var catalog = [Count]string{
	"06:00 AM - 07:00 AM", "07:00 AM - 08:00 AM", "08:00 AM - 09:00 AM", "09:00 AM - 10:00 AM",
	"10:00 AM - 11:00 AM", "11:00 AM - 12:00 PM", "12:00 PM - 01:00 PM", "01:00 PM - 02:00 PM",
	"02:00 PM - 03:00 PM", "03:00 PM - 04:00 PM", "04:00 PM - 05:00 PM", "05:00 PM - 06:00 PM",
	"06:00 PM - 07:00 PM", "07:00 PM - 08:00 PM", "08:00 PM - 09:00 PM", "09:00 PM - 10:00 PM",
	"10:00 PM - 11:00 PM", "11:00 PM - 12:00 AM", "12:00 AM - 01:00 AM", "01:00 AM - 02:00 AM",
	"02:00 AM - 03:00 AM", "03:00 AM - 04:00 AM", "04:00 AM - 05:00 AM", "05:00 AM - 06:00 AM",
}

var index = func() map[string]int {
	m := make(map[string]int, Count)
	for i, label := range catalog {
		m[label] = i
	}
	return m
}()

// All returns the catalog in canonical order. The slice is a copy.
func All() []string {
	out := make([]string, Count)
	copy(out, catalog[:])
	return out
}

func Contains(label string) bool {
	_, ok := index[label]
	return ok
}

// Index returns the catalog position of label, or -1.
func Index(label string) int {
	if i, ok := index[label]; ok {
		return i
	}
	return -1
}

// Sort orders labels by catalog position in place; unknown labels go last in
// their original relative order.
func Sort(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		a, b := Index(labels[i]), Index(labels[j])
		if a < 0 {
			return false
		}
		if b < 0 {
			return true
		}
		return a < b
	})
}
