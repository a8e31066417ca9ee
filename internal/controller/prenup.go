package controller

import (
	"net/http"

	"weddingplan/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetPrenup(c *gin.Context) {
	items, err := h.Planner.EnsurePrenup(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "GetPrenup", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdatePrenupItem(c *gin.Context) {
	var patch models.PrenupPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	it, err := h.Planner.UpdatePrenupItem(c.Request.Context(), h.session(c), c.Param("id"), patch)
	if err != nil {
		fail(c, "UpdatePrenupItem", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) ResetPrenup(c *gin.Context) {
	items, err := h.Planner.ResetPrenup(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "ResetPrenup", err)
		return
	}
	c.JSON(http.StatusOK, items)
}
