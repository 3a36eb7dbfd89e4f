package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reelvault/internal/catalog"
	"reelvault/internal/events"
	"reelvault/internal/storage"
	"reelvault/pkg/models"
)

type TagHandler struct {
	Tags *storage.TagRepo
	Hub  *events.Hub
}

func NewTagHandler(tags *storage.TagRepo, hub *events.Hub) *TagHandler {
	return &TagHandler{Tags: tags, Hub: hub}
}

func (h *TagHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/tags", h.list)
	protected.POST("/tags", h.create)
	protected.PATCH("/tags/:id", h.patch)
	protected.DELETE("/tags/:id", h.remove)
}

// list returns all tags; with ?q= they are fuzzy-ranked and non-matches
// dropped, which is what drives tag autocompletion.
func (h *TagHandler) list(c *gin.Context) {
	tags, err := h.Tags.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	ranked := catalog.RankTags(tags, q)

	c.JSON(http.StatusOK, gin.H{"total": len(ranked), "q": q, "items": ranked})
}

type tagCreateReq struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *TagHandler) create(c *gin.Context) {
	var req tagCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if req.Color == "" {
		req.Color = "#7a7a7a"
	}

	// names are unique case-insensitively
	if existing, err := h.Tags.GetByName(c.Request.Context(), req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	} else if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "tag name already exists", "id": existing.ID})
		return
	}

	created, err := h.Tags.Create(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.TagUpdate(created.ID))
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TagHandler) patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patch models.TagPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
			return
		}
		patch.Name = &name
		if existing, err := h.Tags.GetByName(c.Request.Context(), name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		} else if existing != nil && existing.ID != id {
			c.JSON(http.StatusConflict, gin.H{"error": "tag name already exists"})
			return
		}
	}

	updated, err := h.Tags.Update(c.Request.Context(), id, patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	saved, err := h.Tags.GetByID(c.Request.Context(), id)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.TagUpdate(id))
	}
	c.JSON(http.StatusOK, saved)
}

func (h *TagHandler) remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.Tags.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(events.TagDelete(id))
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
