package controller

import (
	"net/http"

	"weddingplan/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) PartnerStatus(c *gin.Context) {
	st, err := h.Partner.Status(c.Request.Context(), middleware.Store(c), middleware.UserID(c))
	if err != nil {
		fail(c, "PartnerStatus", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ShareCode returns the device's share code, creating one if needed.
// {"regenerate": true} replaces an existing code.
func (h *Handler) ShareCode(c *gin.Context) {
	var body struct {
		Regenerate bool `json:"regenerate"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c)
			return
		}
	}
	ctx, local, userID := c.Request.Context(), middleware.Store(c), middleware.UserID(c)
	var (
		code string
		err  error
	)
	if body.Regenerate {
		code, err = h.Partner.GenerateCode(ctx, local, userID)
	} else {
		code, err = h.Partner.ShareCode(ctx, local, userID)
	}
	if err != nil {
		fail(c, "ShareCode", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_code": code})
}

func (h *Handler) LinkPartner(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	lp, err := h.Partner.Link(c.Request.Context(), middleware.Store(c), middleware.UserID(c), body.Code)
	if err != nil {
		fail(c, "LinkPartner", err)
		return
	}
	c.JSON(http.StatusOK, lp)
}

func (h *Handler) UnlinkPartner(c *gin.Context) {
	if err := h.Partner.Unlink(c.Request.Context(), middleware.Store(c)); err != nil {
		fail(c, "UnlinkPartner", err)
		return
	}
	c.Status(http.StatusNoContent)
}
