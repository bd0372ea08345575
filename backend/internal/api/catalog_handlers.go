package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) listTypes(c *gin.Context) {
	types, err := h.svc.Catalog.ListTypes(c.Request.Context(), c.Query("language"))
	if err != nil {
		h.fail(c, "list relationship types", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}

type addTypeRequest struct {
	Type        string `json:"type" binding:"required"`
	Language    string `json:"language"`
	DisplayName string `json:"display_name"`
	InverseType string `json:"inverse_type"`
	Category    string `json:"category"`
}

func (h *handler) addType(c *gin.Context) {
	var req addTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Language == "" {
		req.Language = h.svc.DefaultLanguage
	}

	t, err := h.svc.Catalog.AddType(c.Request.Context(), req.Type, req.Language, req.DisplayName, req.InverseType, req.Category)
	if err != nil {
		h.fail(c, "add relationship type", err)
		return
	}
	c.JSON(http.StatusOK, t)
}
