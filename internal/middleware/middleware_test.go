package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weddingplan/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func token(t *testing.T, sub string, key string, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func authRouter(chain ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", UserID(c))
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptionalAuth(t *testing.T) {
	r := authRouter(OptionalAuth(secret))
	tests := []struct {
		name   string
		auth   string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "user="},
		{"valid", "Bearer " + token(t, "user-1", secret, jwt.SigningMethodHS256), http.StatusOK, "user=user-1"},
		{"wrong key", "Bearer " + token(t, "user-1", "other", jwt.SigningMethodHS256), http.StatusUnauthorized, ""},
		{"wrong alg", "Bearer " + token(t, "user-1", secret, jwt.SigningMethodHS512), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + token(t, "", secret, jwt.SigningMethodHS256), http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		w := do(r, map[string]string{"Authorization": tt.auth})
		if w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.status)
		}
		if tt.body != "" && w.Body.String() != tt.body {
			t.Errorf("%s: body = %q", tt.name, w.Body.String())
		}
	}
}

func TestRequireAuth(t *testing.T) {
	r := authRouter(OptionalAuth(secret), RequireAuth())
	if w := do(r, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", w.Code)
	}
	w := do(r, map[string]string{"Authorization": "Bearer " + token(t, "user-1", secret, jwt.SigningMethodHS256)})
	if w.Code != http.StatusOK {
		t.Errorf("signed-in status = %d", w.Code)
	}
}

func TestDeviceBindsNamespace(t *testing.T) {
	r := gin.New()
	r.GET("/", Device(store.NewMemoryBackend()), func(c *gin.Context) {
		c.String(http.StatusOK, Store(c).Namespace())
	})
	for id, want := range map[string]int{
		"phone-1":      http.StatusOK,
		"":             http.StatusBadRequest,
		"a:b":          http.StatusBadRequest,
		"has space":    http.StatusBadRequest,
		"device.2_abc": http.StatusOK,
	} {
		w := do(r, map[string]string{HeaderDeviceID: id})
		if w.Code != want {
			t.Errorf("%q: status = %d, want %d", id, w.Code, want)
		}
		if want == http.StatusOK && w.Body.String() != id {
			t.Errorf("%q: namespace = %q", id, w.Body.String())
		}
	}
}

func TestRequestLoggerEchoesID(t *testing.T) {
	r := authRouter(RequestLogger())
	w := do(r, map[string]string{HeaderRequestID: "req-42"})
	if got := w.Header().Get(HeaderRequestID); got != "req-42" {
		t.Errorf("request id = %q", got)
	}
	if got := do(r, nil).Header().Get(HeaderRequestID); got == "" {
		t.Error("expected a generated request id")
	}
}

type premiumFunc func(ctx context.Context, userID string) (bool, error)

func (f premiumFunc) PremiumStatus(ctx context.Context, userID string) (bool, error) {
	return f(ctx, userID)
}

func TestRequirePremium(t *testing.T) {
	paid := premiumFunc(func(_ context.Context, userID string) (bool, error) { return userID == "user-1", nil })
	broken := premiumFunc(func(context.Context, string) (bool, error) { return false, errors.New("db down") })
	signedIn := map[string]string{"Authorization": "Bearer " + token(t, "user-1", secret, jwt.SigningMethodHS256)}

	tests := []struct {
		name    string
		enabled bool
		checker PremiumChecker
		header  map[string]string
		status  int
	}{
		{"gate off", false, paid, nil, http.StatusOK},
		{"anonymous", true, paid, nil, http.StatusPaymentRequired},
		{"premium", true, paid, signedIn, http.StatusOK},
		{"lookup error", true, broken, signedIn, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		r := authRouter(OptionalAuth(secret), RequirePremium(tt.enabled, tt.checker))
		if w := do(r, tt.header); w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.status)
		}
	}
}
