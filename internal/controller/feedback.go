package controller

import (
	"net/http"

	"weddingplan/internal/feedback"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var body feedback.Feedback
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	if body.Fingerprint == "" {
		body.Fingerprint = feedback.Fingerprint(c.GetHeader("User-Agent"), c.GetHeader("Accept-Language"))
	}
	reply, err := h.Feedback.Submit(c.Request.Context(), body)
	if err != nil {
		fail(c, "SubmitFeedback", err)
		return
	}
	c.Data(http.StatusOK, "application/json", reply)
}
