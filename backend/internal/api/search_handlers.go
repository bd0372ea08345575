package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/search"
)

type indexRequest struct {
	Entity      string `json:"entity" binding:"required"`
	DisplayText string `json:"display_text" binding:"required"`
}

func (h *handler) indexEntity(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ref, err := entity.ParseRef(req.Entity)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.svc.Search.Index(c.Request.Context(), c.Param("owner"), req.DisplayText, ref); err != nil {
		h.fail(c, "index entity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "indexed", "normalized": search.Normalize(req.DisplayText)})
}

func (h *handler) displayName(c *gin.Context) {
	name, found, err := h.svc.Search.DisplayName(c.Request.Context(), c.Param("owner"), c.Param("id"))
	if err != nil {
		h.fail(c, "fetch display name", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not indexed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity_id": c.Param("id"), "display_text": name})
}

type searchQuery struct {
	Q          string   `form:"q"`
	Kinds      []string `form:"kind"`
	MaxResults int      `form:"max_results"`
	Page       int      `form:"page"`
	PageSize   int      `form:"page_size"`
}

func (h *handler) searchEntities(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	opts := search.QueryOptions{MaxResults: q.MaxResults}
	for _, k := range q.Kinds {
		opts.Kinds = append(opts.Kinds, entity.ParseKind(k))
	}

	page, err := h.svc.Search.Query(c.Request.Context(), c.Param("owner"), q.Q, opts, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type resolveQuery struct {
	Q string `form:"q" binding:"required"`
}

func (h *handler) resolve(c *gin.Context) {
	var q resolveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.svc.Resolver.Resolve(c.Request.Context(), c.Param("owner"), q.Q)
	if err != nil {
		h.fail(c, "resolve query", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
