package controller

import (
	"net/http"

	"weddingplan/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.Planner.Settings(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "GetSettings", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSettings merges the body over the current settings. Existing task
// deadlines are not recalculated.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	s, err := h.Planner.UpdateSettings(c.Request.Context(), h.session(c), patch)
	if err != nil {
		fail(c, "UpdateSettings", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ResetSettings(c *gin.Context) {
	s, err := h.Planner.ResetSettings(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "ResetSettings", err)
		return
	}
	c.JSON(http.StatusOK, s)
}
