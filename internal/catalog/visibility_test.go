package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reelvault/pkg/models"
)

func manyEntries(n int) []models.Entry {
	out := make([]models.Entry, n)
	for i := range out {
		out[i] = entry(int64(i+1), "e")
	}
	return out
}

func TestObserveMarksViewportPlusMargin(t *testing.T) {
	entries := manyEntries(100)
	g := ComputeGrid(1000, len(entries), gridSpec) // 4 cols, 25 rows
	v := NewVisibilityTracker()

	v.Observe(g, entries, 0, 700)

	// rows 0..3 are inside viewport+margin: entries 1..16
	assert.True(t, v.Seen(1))
	assert.True(t, v.Seen(16))
	assert.False(t, v.Seen(17))
}

func TestSeenIsMonotone(t *testing.T) {
	entries := manyEntries(100)
	g := ComputeGrid(1000, len(entries), gridSpec)
	v := NewVisibilityTracker()

	v.Observe(g, entries, 0, 700)
	assert.True(t, v.Seen(1))

	// scroll far away; previously seen ids stay seen
	v.Observe(g, entries, 5000, 700)
	assert.True(t, v.Seen(1))
	assert.True(t, v.Seen(16))
}

func TestObserveGrowsWithScroll(t *testing.T) {
	entries := manyEntries(100)
	g := ComputeGrid(1000, len(entries), gridSpec)
	v := NewVisibilityTracker()

	v.Observe(g, entries, 0, 700)
	before := v.Count()

	v.Observe(g, entries, 2000, 700)
	assert.Greater(t, v.Count(), before)
}

func TestMarkAndReset(t *testing.T) {
	v := NewVisibilityTracker()
	v.Mark(7, 9)
	assert.True(t, v.Seen(7))
	assert.True(t, v.Seen(9))
	assert.False(t, v.Seen(8))

	v.Reset()
	assert.False(t, v.Seen(7))
	assert.Zero(t, v.Count())
}

func TestObserveEmptyCatalog(t *testing.T) {
	g := ComputeGrid(1000, 0, gridSpec)
	v := NewVisibilityTracker()
	v.Observe(g, nil, 0, 700)
	assert.Zero(t, v.Count())
}
