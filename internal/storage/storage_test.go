package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelvault/pkg/database"
	"reelvault/pkg/models"
)

func testRepos(t *testing.T) (*EntryRepo, *TagRepo) {
	t.Helper()
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "catalog.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewEntryRepo(db), NewTagRepo(db)
}

func TestEntryCreateGetList(t *testing.T) {
	entries, _ := testRepos(t)
	ctx := context.Background()

	id, err := entries.Create(ctx, models.Entry{Path: "/videos/heat.mkv", Title: "Heat", Year: 1995})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := entries.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Heat", got.Title)
	assert.Equal(t, 1995, got.Year)
	assert.Empty(t, got.Tags)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := entries.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := entries.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEntryGetByPath(t *testing.T) {
	entries, _ := testRepos(t)
	ctx := context.Background()

	_, err := entries.Create(ctx, models.Entry{Path: "/videos/alien.mkv"})
	require.NoError(t, err)

	got, err := entries.GetByPath(ctx, "/videos/alien.mkv")
	require.NoError(t, err)
	assert.NotNil(t, got)

	none, err := entries.GetByPath(ctx, "/videos/absent.mkv")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEntryUpdatePartial(t *testing.T) {
	entries, _ := testRepos(t)
	ctx := context.Background()

	id, err := entries.Create(ctx, models.Entry{Path: "/videos/x.mkv", Title: "X", Rating: 3})
	require.NoError(t, err)

	rating := 5
	watched := true
	ok, err := entries.Update(ctx, id, models.EntryPatch{Rating: &rating, Watched: &watched})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := entries.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.True(t, got.Watched)
	assert.Equal(t, "X", got.Title) // untouched

	// empty patch on an existing row still reports true
	ok, err = entries.Update(ctx, id, models.EntryPatch{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = entries.Update(ctx, 9999, models.EntryPatch{Rating: &rating})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryDelete(t *testing.T) {
	entries, _ := testRepos(t)
	ctx := context.Background()

	id, err := entries.Create(ctx, models.Entry{Path: "/videos/y.mkv"})
	require.NoError(t, err)

	ok, err := entries.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = entries.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagLifecycleAndAttachment(t *testing.T) {
	entries, tags := testRepos(t)
	ctx := context.Background()

	entryID, err := entries.Create(ctx, models.Entry{Path: "/videos/z.mkv", Title: "Z"})
	require.NoError(t, err)

	created, err := tags.Create(ctx, "Action", "#ff0000")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Action", created.Name)

	// case-insensitive lookup
	found, err := tags.GetByName(ctx, "aCtIoN")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, tags.Attach(ctx, entryID, created.ID))
	// attaching twice is a no-op
	require.NoError(t, tags.Attach(ctx, entryID, created.ID))

	got, err := entries.GetByID(ctx, entryID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Action", got.Tags[0].Name)

	listed, err := entries.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Tags, 1)

	ok, err := tags.Detach(ctx, entryID, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tags.Detach(ctx, entryID, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagDeleteDetachesEverywhere(t *testing.T) {
	entries, tags := testRepos(t)
	ctx := context.Background()

	entryID, err := entries.Create(ctx, models.Entry{Path: "/videos/w.mkv"})
	require.NoError(t, err)
	tg, err := tags.Create(ctx, "drama", "#00ff00")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, entryID, tg.ID))

	ok, err := tags.Delete(ctx, tg.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := entries.GetByID(ctx, entryID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestTagUpdate(t *testing.T) {
	_, tags := testRepos(t)
	ctx := context.Background()

	tg, err := tags.Create(ctx, "oldname", "#111111")
	require.NoError(t, err)

	name := "newname"
	ok, err := tags.Update(ctx, tg.ID, models.TagPatch{Name: &name})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := tags.GetByID(ctx, tg.ID)
	require.NoError(t, err)
	assert.Equal(t, "newname", got.Name)

	ok, err = tags.Update(ctx, 9999, models.TagPatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryDeleteCascadesTagRows(t *testing.T) {
	entries, tags := testRepos(t)
	ctx := context.Background()

	entryID, err := entries.Create(ctx, models.Entry{Path: "/videos/v.mkv"})
	require.NoError(t, err)
	tg, err := tags.Create(ctx, "keepme", "#222222")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, entryID, tg.ID))

	ok, err := entries.Delete(ctx, entryID)
	require.NoError(t, err)
	require.True(t, ok)

	// the tag itself survives
	got, err := tags.GetByID(ctx, tg.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
