package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"weddingplan/internal/store"
	"weddingplan/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	HeaderDeviceID  = "X-Device-ID"
	HeaderRequestID = "X-Request-ID"

	userKey  = "user"
	storeKey = "store"
)

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestLogger tags the request context with a request id and logs the
// outcome once the handler chain returns.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, id)

		c.Next()

		logger.Info(ctx, "Request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// OptionalAuth reads a bearer token when one is sent. No header means an
// anonymous request; a header that does not verify is rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			logger.Debug(ctx, "Malformed Authorization header")
			return
		}
		if secret == "" {
			logger.Debug(ctx, "JWT secret not configured, treating request as anonymous")
			c.Next()
			return
		}
		tokenStr := strings.TrimSpace(auth[len(prefix):])
		token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			logger.Debug(ctx, "JWT parse failed", "error", err)
			return
		}
		sub, _ := token.Claims.GetSubject()
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userKey, sub)
		c.Request = c.Request.WithContext(logger.With(ctx, "user_id", sub))
		c.Next()
	}
}

// RequireAuth rejects requests OptionalAuth left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sign-in required"})
			return
		}
		c.Next()
	}
}

// Device binds the request to the local store namespace named by
// X-Device-ID.
func Device(backend store.Backend, opts ...store.Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if !deviceIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid " + HeaderDeviceID})
			return
		}
		c.Set(storeKey, store.New(backend, id, opts...))
		c.Next()
	}
}

// PremiumChecker answers whether a user has paid.
type PremiumChecker interface {
	PremiumStatus(ctx context.Context, userID string) (bool, error)
}

// RequirePremium gates a route behind the paid upgrade when enabled.
func RequirePremium(enabled bool, checker PremiumChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		ok, err := checker.PremiumStatus(ctx, UserID(c))
		if err != nil {
			logger.Error(ctx, "Premium lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Could not verify premium status"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Premium required"})
			return
		}
		c.Next()
	}
}

// UserID is the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userKey)
}

// Store is the device store bound by Device. It is nil outside that
// middleware.
func Store(c *gin.Context) *store.Store {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil
	}
	s, _ := v.(*store.Store)
	return s
}
