package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelvault/pkg/models"
)

func seededStore() *Store {
	action := tag(1, "action")
	comedy := tag(2, "comedy")

	s := NewStore()
	s.Reload([]models.Entry{
		entry(1, "Die Hard", action),
		entry(2, "Hot Fuzz", action, comedy),
		entry(3, "Airplane", comedy),
		entry(4, "Solaris"),
	}, []models.Tag{action, comedy})
	return s
}

func TestStoreReadAfterWrite(t *testing.T) {
	s := seededStore()

	s.SetQuery("solaris")
	assert.Equal(t, []string{"Solaris"}, titles(s.Filtered()))

	s.SetQuery("")
	assert.Len(t, s.Filtered(), 4)
}

func TestStoreSelectionSurvivesCompatibleFilter(t *testing.T) {
	s := seededStore()

	// select Hot Fuzz (filtered order is newest-first: Solaris, Airplane, Hot Fuzz, Die Hard)
	s.Click(2, ClickPlain)
	assert.Equal(t, []int64{2}, s.SelectedIDs())

	// narrowing to a view that still contains it keeps it selected
	s.SetQuery("action")
	require.Equal(t, []string{"Hot Fuzz", "Die Hard"}, titles(s.Filtered()))
	assert.Equal(t, []int64{2}, s.SelectedIDs())

	// narrowing it out drops it and clears the anchor
	s.SetQuery("comedy solaris")
	assert.Empty(t, s.SelectedIDs())
	assert.Equal(t, -1, s.Selection().Anchor())
}

func TestStoreRemoveEntriesReconciles(t *testing.T) {
	s := seededStore()
	s.Click(0, ClickPlain)
	s.Click(2, ClickRange) // Solaris, Airplane, Hot Fuzz

	s.RemoveEntries(3, 2) // Airplane, Hot Fuzz confirmed deleted
	assert.Equal(t, []int64{4}, s.SelectedIDs())
	assert.Len(t, s.Entries(), 2)

	_, ok := s.Entry(3)
	assert.False(t, ok)
}

func TestStorePatchReappliesFilter(t *testing.T) {
	s := seededStore()
	s.SetCategory(CategoryWatched, 0)
	assert.Empty(t, s.Filtered())

	w := true
	ok := s.ApplyEntryPatch(1, models.EntryPatch{Watched: &w})
	require.True(t, ok)
	assert.Equal(t, []string{"Die Hard"}, titles(s.Filtered()))

	assert.False(t, s.ApplyEntryPatch(99, models.EntryPatch{Watched: &w}))
}

func TestStoreTagRenameUpdatesSnapshots(t *testing.T) {
	s := seededStore()

	name := "thriller"
	ok := s.ApplyTagPatch(1, models.TagPatch{Name: &name})
	require.True(t, ok)

	e, _ := s.Entry(1)
	require.Len(t, e.Tags, 1)
	assert.Equal(t, "thriller", e.Tags[0].Name)

	// old name no longer filters as a tag token
	s.SetQuery("thriller")
	assert.Equal(t, []string{"Hot Fuzz", "Die Hard"}, titles(s.Filtered()))
}

func TestStoreRemoveTagDetachesEverywhere(t *testing.T) {
	s := seededStore()
	s.SetCategory(CategoryTag, 2)
	require.Len(t, s.Filtered(), 2)

	s.RemoveTag(2)
	assert.Empty(t, s.Filtered())

	e, _ := s.Entry(3)
	assert.Empty(t, e.Tags)
	_, ok := s.Tag(2)
	assert.False(t, ok)
}

func TestStoreAttachDetach(t *testing.T) {
	s := seededStore()

	require.True(t, s.AttachTag(4, 1))
	e, _ := s.Entry(4)
	assert.True(t, e.HasTag(1))

	// attaching twice is a no-op
	require.True(t, s.AttachTag(4, 1))
	e, _ = s.Entry(4)
	assert.Len(t, e.Tags, 1)

	require.True(t, s.DetachTag(4, 1))
	e, _ = s.Entry(4)
	assert.False(t, e.HasTag(1))

	assert.False(t, s.AttachTag(99, 1))
	assert.False(t, s.AttachTag(4, 99))
}

func TestStoreUntaggedCategoryTracksDetach(t *testing.T) {
	s := seededStore()
	s.SetCategory(CategoryUntagged, 0)
	require.Equal(t, []string{"Solaris"}, titles(s.Filtered()))

	s.DetachTag(1, 1)
	assert.Equal(t, []string{"Solaris", "Die Hard"}, titles(s.Filtered()))
}

func TestStoreTagByName(t *testing.T) {
	s := seededStore()
	got, ok := s.TagByName("ACTION")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	_, ok = s.TagByName("missing")
	assert.False(t, ok)
}

func TestStoreTagSuggestions(t *testing.T) {
	s := seededStore()
	assert.Equal(t, []string{"action"}, names(s.TagSuggestions("act")))
	// empty query: all tags newest-first
	assert.Equal(t, []string{"comedy", "action"}, names(s.TagSuggestions("")))
}

func TestStoreReloadKeepsFilterAndPrunesSelection(t *testing.T) {
	s := seededStore()
	s.SetQuery("action")
	s.Click(0, ClickPlain) // Hot Fuzz
	require.Equal(t, []int64{2}, s.SelectedIDs())

	// reload without Hot Fuzz
	action := tag(1, "action")
	s.Reload([]models.Entry{entry(1, "Die Hard", action)}, []models.Tag{action})

	assert.Equal(t, "action", s.FilterSpec().Query)
	assert.Equal(t, []string{"Die Hard"}, titles(s.Filtered()))
	assert.Empty(t, s.SelectedIDs())
}

func TestStoreAddEntryVisibleImmediately(t *testing.T) {
	s := seededStore()
	s.AddEntry(entry(5, "Stalker"))
	assert.Equal(t, "Stalker", s.Filtered()[0].Title)

	got, ok := s.Entry(5)
	require.True(t, ok)
	assert.Equal(t, "Stalker", got.Title)
}
