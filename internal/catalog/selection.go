package catalog

import "reelvault/pkg/models"

// ClickMod is the modifier held during a click on a displayed entry.
type ClickMod int

const (
	ClickPlain  ClickMod = iota // replace selection
	ClickToggle                 // ctrl/cmd: toggle one entry
	ClickRange                  // shift: select anchor..clicked
)

// Selection tracks the multi-select state over the currently displayed
// list: an ordered id list, a membership set, and the anchor index used
// as the pivot for range selection. It must be reconciled against the
// displayed list whenever that list changes; afterwards the selection is
// always a subset of the list's ids.
type Selection struct {
	order  []int64
	member map[int64]struct{}
	anchor int // index into the last-known displayed list, -1 when unset
}

func NewSelection() *Selection {
	return &Selection{member: make(map[int64]struct{}), anchor: -1}
}

// Click applies one click at index within visible.
//
//	plain                selection = {clicked}, anchor = index
//	toggle               flip membership, anchor = index either way
//	range (with anchor)  selection = visible[min..max], anchor unchanged
//	range (no anchor)    same as plain
func (s *Selection) Click(visible []models.Entry, index int, mod ClickMod) {
	if index < 0 || index >= len(visible) {
		return
	}
	id := visible[index].ID

	switch mod {
	case ClickToggle:
		if _, ok := s.member[id]; ok {
			s.remove(id)
		} else {
			s.add(id)
		}
		s.anchor = index

	case ClickRange:
		if s.anchor < 0 {
			s.replace(id)
			s.anchor = index
			return
		}
		lo, hi := s.anchor, index
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi >= len(visible) {
			hi = len(visible) - 1
		}
		s.clear()
		for i := lo; i <= hi; i++ {
			s.add(visible[i].ID)
		}

	default:
		s.replace(id)
		s.anchor = index
	}
}

// Reconcile intersects the selection with the ids present in visible,
// preserving selection order. The anchor is cleared when nothing
// survives. After Reconcile the selection never references a removed or
// filtered-out entry.
func (s *Selection) Reconcile(visible []models.Entry) {
	present := make(map[int64]struct{}, len(visible))
	for _, e := range visible {
		present[e.ID] = struct{}{}
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := present[id]; ok {
			kept = append(kept, id)
		} else {
			delete(s.member, id)
		}
	}
	s.order = kept

	if len(s.order) == 0 {
		s.anchor = -1
	} else if s.anchor >= len(visible) {
		s.anchor = len(visible) - 1
	}
}

// IDs returns the selected ids in selection order. The slice is a copy.
func (s *Selection) IDs() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Selection) Contains(id int64) bool {
	_, ok := s.member[id]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

// Anchor is the pivot index for range selection, -1 when unset.
func (s *Selection) Anchor() int { return s.anchor }

// Clear empties the selection and drops the anchor.
func (s *Selection) Clear() {
	s.clear()
	s.anchor = -1
}

func (s *Selection) clear() {
	s.order = s.order[:0]
	for id := range s.member {
		delete(s.member, id)
	}
}

func (s *Selection) replace(id int64) {
	s.clear()
	s.add(id)
}

func (s *Selection) add(id int64) {
	if _, ok := s.member[id]; ok {
		return
	}
	s.member[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Selection) remove(id int64) {
	if _, ok := s.member[id]; !ok {
		return
	}
	delete(s.member, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
