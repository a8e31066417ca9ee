package controller

import (
	"net/http"

	"weddingplan/internal/models"
	"weddingplan/internal/planner"

	"github.com/gin-gonic/gin"
)

// GetTasks returns the task list, seeding it on first use. Optional query
// filters: phase, category, status, q.
func (h *Handler) GetTasks(c *gin.Context) {
	tasks, err := h.Planner.EnsureTasks(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "GetTasks", err)
		return
	}
	c.JSON(http.StatusOK, planner.FilterTasks(tasks, planner.Filter{
		Phase:    models.PhaseID(c.Query("phase")),
		Category: models.CategoryID(c.Query("category")),
		Status:   models.TaskStatus(c.Query("status")),
		Query:    c.Query("q"),
	}))
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	t, err := h.Planner.UpdateTask(c.Request.Context(), h.session(c), c.Param("id"), patch)
	if err != nil {
		fail(c, "UpdateTask", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) SetTaskStatus(c *gin.Context) {
	var body struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	t, err := h.Planner.SetStatus(c.Request.Context(), h.session(c), c.Param("id"), body.Status)
	if err != nil {
		fail(c, "SetTaskStatus", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CycleTaskStatus(c *gin.Context) {
	t, err := h.Planner.CycleStatus(c.Request.Context(), h.session(c), c.Param("id"))
	if err != nil {
		fail(c, "CycleTaskStatus", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ToggleSubtask(c *gin.Context) {
	t, err := h.Planner.ToggleSubtask(c.Request.Context(), h.session(c), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		fail(c, "ToggleSubtask", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ResetTasks(c *gin.Context) {
	tasks, err := h.Planner.ResetTasks(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "ResetTasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.Planner.Dashboard(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "Dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) Budget(c *gin.Context) {
	b, err := h.Planner.Budget(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "Budget", err)
		return
	}
	c.JSON(http.StatusOK, b)
}
