package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"weddingplan/internal/billing"
	"weddingplan/internal/feedback"
	"weddingplan/internal/middleware"
	"weddingplan/internal/mirror"
	"weddingplan/internal/models"
	"weddingplan/internal/partner"
	"weddingplan/internal/planner"
	"weddingplan/internal/store"
	"weddingplan/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Probe checks one dependency for /ready.
type Probe func(ctx context.Context) error

// Handler serves the HTTP API. Every field but Probes must be set; services
// without credentials answer as not configured.
type Handler struct {
	Mirror   *mirror.Mirror
	Planner  *planner.Service
	Partner  *partner.Service
	Billing  *billing.Service
	Feedback *feedback.Relay
	Probes   map[string]Probe
}

func (h *Handler) session(c *gin.Context) *mirror.Session {
	return h.Mirror.Session(middleware.Store(c), middleware.UserID(c))
}

// Health returns 200 if the process is alive.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready pings every configured dependency in parallel.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for name, probe := range h.Probes {
		g.Go(func() error {
			if err := probe(gctx); err != nil {
				return &probeError{name: name, err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var pe *probeError
		if errors.As(err, &pe) {
			logger.Warn(ctx, "Readiness probe failed", "dependency", pe.name, "error", pe.err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": pe.name + " unavailable"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.String(http.StatusOK, "OK")
}

type probeError struct {
	name string
	err  error
}

func (e *probeError) Error() string { return e.name + ": " + e.err.Error() }
func (e *probeError) Unwrap() error { return e.err }

// fail maps a service error to a response. Unexpected errors are logged and
// never echoed.
func fail(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()
	status, msg := http.StatusInternalServerError, "Internal error"
	switch {
	case isContextErr(err) && ctx.Err() != nil:
		return
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrInvalidPatch):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrInvalidBundle):
		status, msg = http.StatusUnprocessableEntity, "Invalid export file"
	case errors.Is(err, mirror.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, "Remote sync is not available"
	case errors.Is(err, partner.ErrInvalidCode):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, partner.ErrCodeNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, partner.ErrSelfLink):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, partner.ErrLinkFailed):
		status, msg = http.StatusBadGateway, "Partner link failed"
	case errors.Is(err, billing.ErrInvalidSignature):
		status, msg = http.StatusBadRequest, "Invalid signature"
	case errors.Is(err, billing.ErrUserRequired):
		status, msg = http.StatusUnauthorized, "Sign-in required"
	case errors.Is(err, feedback.ErrInvalid):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, feedback.ErrNotConfigured):
		status, msg = http.StatusServiceUnavailable, "Feedback is not configured"
	case errors.Is(err, feedback.ErrRelayFailed):
		status, msg = http.StatusBadGateway, "Failed to relay feedback"
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error(ctx, op+" failed", "error", err)
	} else {
		logger.Debug(ctx, op+" rejected", "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
