package controller

import (
	"errors"
	"net/http"
	"strings"

	"weddingplan/internal/billing"
	"weddingplan/internal/middleware"

	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = 64 << 10

func (h *Handler) BillingStatus(c *gin.Context) {
	premium, err := h.Billing.PremiumStatus(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, "BillingStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"premium":             premium,
		"checkout_configured": h.Billing.CheckoutConfigured(),
	})
}

func (h *Handler) Checkout(c *gin.Context) {
	url, err := h.Billing.CreateCheckout(c.Request.Context(), middleware.UserID(c), origin(c))
	if errors.Is(err, billing.ErrNotConfigured) {
		c.JSON(http.StatusOK, gin.H{"url": nil, "message": "Payments are not configured"})
		return
	}
	if err != nil {
		fail(c, "Checkout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Webhook receives payment events. It must see the exact bytes that were
// signed, so the body is read raw.
func (h *Handler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	payload, err := c.GetRawData()
	if err != nil {
		badRequest(c)
		return
	}
	res, err := h.Billing.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		fail(c, "Webhook", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func origin(c *gin.Context) string {
	if o := c.GetHeader("Origin"); o != "" {
		return o
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
