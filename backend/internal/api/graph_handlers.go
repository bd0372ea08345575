package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/graph"
)

type createEdgeRequest struct {
	From         string     `json:"from" binding:"required"`
	To           string     `json:"to" binding:"required"`
	RelationType string     `json:"relation_type" binding:"required"`
	Language     string     `json:"language"`
	Meta         graph.Meta `json:"meta"`
}

func (h *handler) createEdge(c *gin.Context) {
	var req createEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	source, err := entity.ParseRef(req.From)
	if err != nil {
		badRequest(c, err)
		return
	}
	target, err := entity.ParseRef(req.To)
	if err != nil {
		badRequest(c, err)
		return
	}
	if req.Language == "" {
		req.Language = h.svc.DefaultLanguage
	}

	primary, inverse, err := h.svc.Graph.CreateEdge(c.Request.Context(), c.Param("owner"), source, target, req.RelationType, req.Language, req.Meta)
	if err != nil {
		h.fail(c, "create relationship", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"primary": primary, "inverse": inverse})
}

func (h *handler) getRelationship(c *gin.Context) {
	edges, err := h.svc.Graph.GetRelationship(c.Request.Context(), c.Param("owner"), c.Param("edgeId"))
	if err != nil {
		h.fail(c, "fetch relationship", err)
		return
	}
	if len(edges) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relationship not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"edges": edges})
}

func (h *handler) updateRelationship(c *gin.Context) {
	var meta graph.Meta
	if err := c.ShouldBindJSON(&meta); err != nil {
		badRequest(c, err)
		return
	}

	edges, err := h.svc.Graph.UpdateRelationship(c.Request.Context(), c.Param("owner"), c.Param("edgeId"), meta)
	if err != nil {
		h.fail(c, "update relationship", err)
		return
	}
	if len(edges) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relationship not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"edges": edges})
}

// updateEdgeRequest is an edge row whose direction must be stated explicitly
type updateEdgeRequest struct {
	graph.Edge
	IsPrimary *bool `json:"is_primary" binding:"required"`
}

// updateEdge replaces a single direction; the sibling row is not touched
func (h *handler) updateEdge(c *gin.Context) {
	var req updateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	edge := req.Edge
	edge.IsPrimary = *req.IsPrimary
	edge.Owner = c.Param("owner")
	edge.EdgeID = c.Param("edgeId")

	updated, err := h.svc.Graph.UpdateEdge(c.Request.Context(), edge)
	if err != nil {
		h.fail(c, "update edge", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handler) deleteEdge(c *gin.Context) {
	deleted, err := h.svc.Graph.DeleteEdge(c.Request.Context(), c.Param("owner"), c.Param("edgeId"))
	if err != nil {
		h.fail(c, "delete relationship", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relationship not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type edgeQuery struct {
	Source string `form:"source" binding:"required"`
	Target string `form:"target" binding:"required"`
	Type   string `form:"type"`
}

func (h *handler) getEdge(c *gin.Context) {
	var q edgeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	edge, found, err := h.svc.Graph.GetEdge(c.Request.Context(), c.Param("owner"), q.Source, q.Target, q.Type)
	if err != nil {
		h.fail(c, "fetch edge", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Edge not found"})
		return
	}
	c.JSON(http.StatusOK, edge)
}

type listEdgesQuery struct {
	Direction   string `form:"direction"`
	PrimaryOnly bool   `form:"primary_only"`
}

func (h *handler) listEdges(c *gin.Context) {
	var q listEdgesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	var (
		edges []graph.Edge
		err   error
	)
	switch q.Direction {
	case "", "from":
		edges, err = h.svc.Graph.GetEdgesFrom(c.Request.Context(), c.Param("owner"), c.Param("id"), q.PrimaryOnly)
	case "to":
		edges, err = h.svc.Graph.GetEdgesTo(c.Request.Context(), c.Param("owner"), c.Param("id"), q.PrimaryOnly)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be 'from' or 'to'"})
		return
	}
	if err != nil {
		h.fail(c, "list edges", err)
		return
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	c.JSON(http.StatusOK, gin.H{"edges": edges})
}

type pathQuery struct {
	From     string `form:"from" binding:"required"`
	To       string `form:"to" binding:"required"`
	MaxDepth *int   `form:"max_depth"`
}

func (h *handler) findPath(c *gin.Context) {
	var q pathQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	depth := -1
	if q.MaxDepth != nil {
		depth = *q.MaxDepth
	}

	path, found, err := h.svc.Graph.FindPath(c.Request.Context(), c.Param("owner"), q.From, q.To, depth)
	if err != nil {
		h.fail(c, "find path", err)
		return
	}
	if path == nil {
		path = []graph.Edge{}
	}
	c.JSON(http.StatusOK, gin.H{"found": found, "path": path})
}
