package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"reelvault/internal/catalog"
	"reelvault/internal/events"
	"reelvault/internal/storage"
	"reelvault/pkg/models"
)

// EntryHandler serves the catalog's entry operations. Listing loads the
// collection and runs the in-memory filter pipeline over it, so the HTTP
// surface and the desktop front-end share identical query semantics.
type EntryHandler struct {
	Entries *storage.EntryRepo
	Tags    *storage.TagRepo
	Hub     *events.Hub
}

func NewEntryHandler(entries *storage.EntryRepo, tags *storage.TagRepo, hub *events.Hub) *EntryHandler {
	return &EntryHandler{Entries: entries, Tags: tags, Hub: hub}
}

func (h *EntryHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/entries", h.list)
	public.GET("/entries/:id", h.getOne)
	protected.POST("/entries", h.create)
	protected.PATCH("/entries/:id", h.patch)
	protected.DELETE("/entries/:id", h.remove)
	protected.DELETE("/entries", h.bulkDelete)
	protected.POST("/entries/:id/tags/:tag_id", h.attachTag)
	protected.DELETE("/entries/:id/tags/:tag_id", h.detachTag)
}

func (h *EntryHandler) list(c *gin.Context) {
	all, err := h.Entries.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	tags, err := h.Tags.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	spec := catalog.ParseCategory(c.Query("category"))
	spec.Query = strings.TrimSpace(c.Query("q"))
	filtered := catalog.Filter(all, tags, spec, nil)

	limit := parseInt(c.Query("limit"), 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := parseInt(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"category": spec.String(),
		"q":        spec.Query,
		"items":    filtered[offset:end],
	})
}

func (h *EntryHandler) getOne(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.Entries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

type createReq struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Notes    string `json:"notes"`
	Size     int64  `json:"size"`
	Meta     string `json:"meta"`
	Favorite bool   `json:"favorite"`
}

func (h *EntryHandler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return
	}

	if existing, err := h.Entries.GetByPath(c.Request.Context(), req.Path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	} else if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "path already catalogued", "id": existing.ID})
		return
	}

	id, err := h.Entries.Create(c.Request.Context(), models.Entry{
		Path:     req.Path,
		Title:    req.Title,
		Year:     req.Year,
		Notes:    req.Notes,
		Size:     req.Size,
		Meta:     req.Meta,
		Favorite: req.Favorite,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	saved, err := h.Entries.GetByID(c.Request.Context(), id)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.EntryUpdate(id))
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *EntryHandler) patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patch models.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if patch.Rating != nil && (*patch.Rating < 0 || *patch.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be 0-5"})
		return
	}

	updated, err := h.Entries.Update(c.Request.Context(), id, patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	saved, err := h.Entries.GetByID(c.Request.Context(), id)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.EntryUpdate(id))
	}
	c.JSON(http.StatusOK, saved)
}

func (h *EntryHandler) remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.Entries.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.EntryDelete(id))
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type bulkDeleteReq struct {
	IDs []int64 `json:"ids"`
}

// bulkDelete (DELETE /entries with an ids body) deletes per-id and
// reports the outcome of each, so callers can drop exactly the
// confirmed ids from their state.
func (h *EntryHandler) bulkDelete(c *gin.Context) {
	var req bulkDeleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}

	deleted := make([]int64, 0, len(req.IDs))
	failed := make([]int64, 0)
	for _, id := range req.IDs {
		ok, err := h.Entries.Delete(c.Request.Context(), id)
		if err != nil || !ok {
			failed = append(failed, id)
			continue
		}
		deleted = append(deleted, id)
	}

	if h.Hub != nil && len(deleted) > 0 {
		go h.Hub.Broadcast(events.EntryDelete(deleted...))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "failed": failed})
}

func (h *EntryHandler) attachTag(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}

	e, err := h.Entries.GetByID(c.Request.Context(), entryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	tg, terr := h.Tags.GetByID(c.Request.Context(), tagID)
	if terr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if e == nil || tg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.Tags.Attach(c.Request.Context(), entryID, tagID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attach failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.EntryUpdate(entryID))
	}
	c.JSON(http.StatusOK, gin.H{"message": "attached"})
}

func (h *EntryHandler) detachTag(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}

	detached, err := h.Tags.Detach(c.Request.Context(), entryID, tagID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detach failed"})
		return
	}
	if !detached {
		c.JSON(http.StatusNotFound, gin.H{"error": "not attached"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.EntryUpdate(entryID))
	}
	c.JSON(http.StatusOK, gin.H{"message": "detached"})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
