package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelvault/internal/storage"
	"reelvault/pkg/database"
	"reelvault/pkg/models"
)

func testRouter(t *testing.T) (*gin.Engine, *storage.EntryRepo, *storage.TagRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	entries := storage.NewEntryRepo(db)
	tags := storage.NewTagRepo(db)

	router := gin.New()
	g := router.Group("/")
	NewEntryHandler(entries, tags, nil).RegisterRoutes(g, g)
	NewTagHandler(tags, nil).RegisterRoutes(g, g)
	return router, entries, tags
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndListEntries(t *testing.T) {
	router, _, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/entries", gin.H{"path": "/videos/heat.mkv", "title": "Heat"})
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate path conflicts
	w = doJSON(t, router, http.MethodPost, "/entries", gin.H{"path": "/videos/heat.mkv"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// missing path rejected
	w = doJSON(t, router, http.MethodPost, "/entries", gin.H{"title": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int            `json:"total"`
		Items []models.Entry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Heat", resp.Items[0].Title)
}

func TestListAppliesFilterPipeline(t *testing.T) {
	router, entries, tags := testRouter(t)
	ctx := context.Background()

	id1, err := entries.Create(ctx, models.Entry{Path: "/videos/a.mkv", Title: "Alien"})
	require.NoError(t, err)
	_, err = entries.Create(ctx, models.Entry{Path: "/videos/b.mkv", Title: "Heat"})
	require.NoError(t, err)

	tg, err := tags.Create(ctx, "horror", "#000000")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, id1, tg.ID))

	// a token matching the tag name filters by tag, not by title text
	w := doJSON(t, router, http.MethodGet, "/entries?q=horror", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []models.Entry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Alien", resp.Items[0].Title)

	w = doJSON(t, router, http.MethodGet, "/entries?category=untagged", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Heat", resp.Items[0].Title)
}

func TestPatchEntry(t *testing.T) {
	router, entries, _ := testRouter(t)
	id, err := entries.Create(context.Background(), models.Entry{Path: "/videos/x.mkv"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPatch, "/entries/1", gin.H{"rating": 5, "watched": true})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 5, got.Rating)
	assert.True(t, got.Watched)

	w = doJSON(t, router, http.MethodPatch, "/entries/1", gin.H{"rating": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/entries/999", gin.H{"rating": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkDeleteReportsPerIDOutcome(t *testing.T) {
	router, entries, _ := testRouter(t)
	ctx := context.Background()

	id1, err := entries.Create(ctx, models.Entry{Path: "/videos/a.mkv"})
	require.NoError(t, err)
	id2, err := entries.Create(ctx, models.Entry{Path: "/videos/b.mkv"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, "/entries", gin.H{"ids": []int64{id1, id2, 999}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Deleted []int64 `json:"deleted"`
		Failed  []int64 `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []int64{id1, id2}, resp.Deleted)
	assert.Equal(t, []int64{999}, resp.Failed)
}

func TestTagCreateConflictsAndRanking(t *testing.T) {
	router, _, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/tags", gin.H{"name": "action", "color": "#f00"})
	require.Equal(t, http.StatusCreated, w.Code)

	// case-insensitive duplicate
	w = doJSON(t, router, http.MethodPost, "/tags", gin.H{"name": "Action"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/tags", gin.H{"name": "drama"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/tags?q=act", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []models.Tag `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "action", resp.Items[0].Name)
}

func TestAttachDetachTagRoutes(t *testing.T) {
	router, entries, tags := testRouter(t)
	ctx := context.Background()

	entryID, err := entries.Create(ctx, models.Entry{Path: "/videos/a.mkv"})
	require.NoError(t, err)
	tg, err := tags.Create(ctx, "noir", "#111")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/entries/1/tags/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := entries.GetByID(ctx, entryID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, tg.ID, got.Tags[0].ID)

	w = doJSON(t, router, http.MethodDelete, "/entries/1/tags/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// second detach: nothing attached any more
	w = doJSON(t, router, http.MethodDelete, "/entries/1/tags/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// unknown entry or tag
	w = doJSON(t, router, http.MethodPost, "/entries/99/tags/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, router, http.MethodPost, "/entries/abc/tags/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
