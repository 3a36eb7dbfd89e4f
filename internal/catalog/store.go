package catalog

import (
	"strings"

	"reelvault/pkg/models"
)

// Store is the explicit state container for the catalog view: it owns the
// entry and tag collections, the active filter, the derived filtered
// list, and the selection. Every mutating method re-derives the filtered
// list and reconciles the selection before returning, so a read
// immediately after any write observes consistent state.
//
// Store is single-writer by contract: it is driven from one event loop
// and does no locking of its own. External code must never mutate the
// slices it returns.
type Store struct {
	entries []models.Entry
	tags    []models.Tag
	byID    map[int64]int // entry id -> index into entries

	spec     FilterSpec
	less     LessFunc
	filtered []models.Entry

	selection  *Selection
	visibility *VisibilityTracker
}

func NewStore() *Store {
	s := &Store{
		byID:       make(map[int64]int),
		spec:       FilterSpec{Category: CategoryAll},
		less:       ByCreatedDesc,
		selection:  NewSelection(),
		visibility: NewVisibilityTracker(),
	}
	s.refresh()
	return s
}

// Reload replaces both collections wholesale, as after a bulk load from
// storage. Filter and selection survive; the selection is cut down to
// ids still present and matching.
func (s *Store) Reload(entries []models.Entry, tags []models.Tag) {
	s.entries = make([]models.Entry, len(entries))
	copy(s.entries, entries)
	s.tags = make([]models.Tag, len(tags))
	copy(s.tags, tags)
	s.reindex()
	s.refresh()
}

func (s *Store) reindex() {
	s.byID = make(map[int64]int, len(s.entries))
	for i, e := range s.entries {
		s.byID[e.ID] = i
	}
}

// refresh re-derives the filtered list and reconciles the selection.
// Every mutation funnels through here before returning to the caller.
func (s *Store) refresh() {
	s.filtered = Filter(s.entries, s.tags, s.spec, s.less)
	s.selection.Reconcile(s.filtered)
}

// --- filter ---

func (s *Store) FilterSpec() FilterSpec { return s.spec }

func (s *Store) SetFilter(spec FilterSpec) {
	s.spec = spec
	s.refresh()
}

func (s *Store) SetQuery(q string) {
	s.spec.Query = q
	s.refresh()
}

func (s *Store) SetCategory(c Category, tagID int64) {
	s.spec.Category = c
	s.spec.TagID = tagID
	s.refresh()
}

// Filtered is the current view: entries passing the filter, in display
// order. Callers must treat it as read-only.
func (s *Store) Filtered() []models.Entry { return s.filtered }

// Entries is the full collection regardless of filter.
func (s *Store) Entries() []models.Entry { return s.entries }

func (s *Store) Tags() []models.Tag { return s.tags }

func (s *Store) Len() int { return len(s.entries) }

func (s *Store) Entry(id int64) (models.Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Entry{}, false
	}
	return s.entries[i], true
}

func (s *Store) Tag(id int64) (models.Tag, bool) {
	for _, t := range s.tags {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tag{}, false
}

// TagByName looks a tag up case-insensitively.
func (s *Store) TagByName(name string) (models.Tag, bool) {
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return models.Tag{}, false
}

// TagSuggestions fuzzy-ranks the tag set against q.
func (s *Store) TagSuggestions(q string) []models.Tag {
	return RankTags(s.tags, q)
}

// --- entry mutations (call only with storage-confirmed results) ---

// AddEntry inserts a newly created entry.
func (s *Store) AddEntry(e models.Entry) {
	s.entries = append(s.entries, e)
	s.byID[e.ID] = len(s.entries) - 1
	s.refresh()
}

// ApplyEntryPatch applies a confirmed partial update. Returns false when
// the entry is unknown; the store is left untouched in that case.
func (s *Store) ApplyEntryPatch(id int64, patch models.EntryPatch) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	patch.Apply(&s.entries[i])
	s.refresh()
	return true
}

// RemoveEntries drops the given ids. Unknown ids are ignored, so a
// partially failed bulk delete can pass exactly the ids that succeeded.
func (s *Store) RemoveEntries(ids ...int64) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if _, gone := drop[e.ID]; !gone {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.reindex()
	s.refresh()
}

// --- tag mutations ---

func (s *Store) AddTag(t models.Tag) {
	s.tags = append(s.tags, t)
	s.refresh()
}

// ApplyTagPatch updates a tag and refreshes the denormalized snapshots
// held by entries so renames show up everywhere at once.
func (s *Store) ApplyTagPatch(id int64, patch models.TagPatch) bool {
	found := false
	for i := range s.tags {
		if s.tags[i].ID == id {
			patch.Apply(&s.tags[i])
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for i := range s.entries {
		for j := range s.entries[i].Tags {
			if s.entries[i].Tags[j].ID == id {
				patch.Apply(&s.entries[i].Tags[j])
			}
		}
	}
	s.refresh()
	return true
}

// RemoveTag deletes a tag and detaches it from every entry.
func (s *Store) RemoveTag(id int64) {
	kept := s.tags[:0]
	for _, t := range s.tags {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tags = kept

	for i := range s.entries {
		tags := s.entries[i].Tags[:0]
		for _, t := range s.entries[i].Tags {
			if t.ID != id {
				tags = append(tags, t)
			}
		}
		s.entries[i].Tags = tags
	}
	s.refresh()
}

func (s *Store) AttachTag(entryID, tagID int64) bool {
	i, ok := s.byID[entryID]
	if !ok {
		return false
	}
	tag, ok := s.Tag(tagID)
	if !ok {
		return false
	}
	if s.entries[i].HasTag(tagID) {
		return true
	}
	s.entries[i].Tags = append(s.entries[i].Tags, tag)
	s.refresh()
	return true
}

func (s *Store) DetachTag(entryID, tagID int64) bool {
	i, ok := s.byID[entryID]
	if !ok {
		return false
	}
	tags := s.entries[i].Tags[:0]
	for _, t := range s.entries[i].Tags {
		if t.ID != tagID {
			tags = append(tags, t)
		}
	}
	s.entries[i].Tags = tags
	s.refresh()
	return true
}

// --- selection ---

// Click applies click semantics at an index within the filtered list.
func (s *Store) Click(index int, mod ClickMod) {
	s.selection.Click(s.filtered, index, mod)
}

func (s *Store) Selection() *Selection { return s.selection }

func (s *Store) SelectedIDs() []int64 { return s.selection.IDs() }

func (s *Store) Selected(id int64) bool { return s.selection.Contains(id) }

// --- visibility ---

func (s *Store) Visibility() *VisibilityTracker { return s.visibility }
