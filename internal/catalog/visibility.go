package catalog

import "reelvault/pkg/models"

// LookaheadMargin is how far beyond the literal viewport, in pixels, cells
// count as visible. Generous on purpose so images start loading before
// they scroll into view.
const LookaheadMargin = 400.0

// VisibilityTracker records which entries have ever entered the
// viewport-plus-margin region. One tracker serves the whole grid (a
// single shared observer, not one per cell). The seen set only grows
// while the tracker lives; scrolling an entry back out never un-marks
// it, which is what keeps already-loaded images from flickering.
type VisibilityTracker struct {
	seen map[int64]struct{}
}

func NewVisibilityTracker() *VisibilityTracker {
	return &VisibilityTracker{seen: make(map[int64]struct{})}
}

// Observe marks every entry whose grid cell intersects the widened
// viewport. entries must be the same ordered list the layout was
// computed for.
func (v *VisibilityTracker) Observe(layout GridLayout, entries []models.Entry, scrollTop, viewportHeight float64) {
	firstRow, lastRow := layout.RowRange(scrollTop, viewportHeight, LookaheadMargin)
	first, last := layout.IndexRange(firstRow, lastRow)
	for i := first; i <= last && i < len(entries); i++ {
		v.seen[entries[i].ID] = struct{}{}
	}
}

// Mark records ids directly, for list views that do not go through the
// grid layout.
func (v *VisibilityTracker) Mark(ids ...int64) {
	for _, id := range ids {
		v.seen[id] = struct{}{}
	}
}

// Seen reports whether id has ever been visible. Once true it stays true
// for the tracker's lifetime.
func (v *VisibilityTracker) Seen(id int64) bool {
	_, ok := v.seen[id]
	return ok
}

func (v *VisibilityTracker) Count() int { return len(v.seen) }

// Reset forgets everything. Only for view unmount; never call it on
// scroll or filter changes.
func (v *VisibilityTracker) Reset() {
	v.seen = make(map[int64]struct{})
}
