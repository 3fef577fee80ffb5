package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, Count)
	assert.Equal(t, "06:00 AM - 07:00 AM", all[0])
	assert.Equal(t, "11:00 PM - 12:00 AM", all[17])
	assert.Equal(t, "05:00 AM - 06:00 AM", all[Count-1])

	all[0] = "mutated"
	assert.Equal(t, "06:00 AM - 07:00 AM", All()[0])
}

func TestAll_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for _, label := range All() {
		assert.False(t, seen[label], "duplicate label %s", label)
		seen[label] = true
	}
}

func TestContainsAndIndex(t *testing.T) {
	assert.True(t, Contains("12:00 PM - 01:00 PM"))
	assert.False(t, Contains("12:00 - 13:00"))
	assert.Equal(t, 6, Index("12:00 PM - 01:00 PM"))
	assert.Equal(t, -1, Index("nope"))
}

func TestSort(t *testing.T) {
	labels := []string{"bogus", "01:00 AM - 02:00 AM", "06:00 AM - 07:00 AM", "07:00 PM - 08:00 PM"}
	Sort(labels)
	assert.Equal(t, []string{"06:00 AM - 07:00 AM", "07:00 PM - 08:00 PM", "01:00 AM - 02:00 AM", "bogus"}, labels)
}
