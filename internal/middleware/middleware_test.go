package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordedAudits struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *recordedAudits) RecordAudit(_ context.Context, entry *models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordedAudits) all() []*models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.AuditLog(nil), r.entries...)
}

func identityRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(I18nMiddleware())
	handlers := append(mw, func(c *gin.Context) {
		userID, _ := utils.GetUserIDFromContext(c)
		role, _ := utils.GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "role": role})
	})
	r.GET("/me", handlers...)
	return r
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "a@example.com", "customer", 1)
	require.NoError(t, err)

	r := identityRouter(AuthRequired())

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie(), Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := utils.GenerateRefreshToken(userID, 1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	r := identityRouter(AuthRequired(), AdminRequired())

	for role, want := range map[string]int{"customer": http.StatusForbidden, "admin": http.StatusOK} {
		token, err := utils.GenerateJWT(uuid.New(), role+"@example.com", role, 1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, want, w.Code, role)
	}
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	r := identityRouter(OptionalAuth())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uuid.Nil.String())
}

func TestNegotiateLanguage(t *testing.T) {
	assert.Equal(t, "en", negotiateLanguage(""))
	assert.Equal(t, "en", negotiateLanguage("en-GB,en;q=0.9"))
	assert.Equal(t, "en", negotiateLanguage("fr-FR"))
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)
	defer limiter.Stop()

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestAuditLogMiddleware(t *testing.T) {
	recorder := &recordedAudits{}
	orderID := uuid.New()

	r := gin.New()
	r.Use(AuditLogMiddleware(recorder))
	r.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })
	r.PATCH("/api/v1/orders/:id/cancel", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	login := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewBufferString(`{"email":"a@example.com","password":"Secret123"}`))
	login.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), login)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/cancel", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	require.Eventually(t, func() bool { return len(recorder.all()) == 2 }, time.Second, 10*time.Millisecond)

	entries := map[string]*models.AuditLog{}
	for _, entry := range recorder.all() {
		entries[entry.ResourceType] = entry
	}

	auth := entries["auth"]
	require.NotNil(t, auth)
	assert.Equal(t, "POST /api/v1/auth/login", auth.Action)
	assert.Equal(t, http.StatusUnauthorized, auth.StatusCode)
	assert.Equal(t, redacted, auth.Payload["password"])
	assert.Equal(t, "a@example.com", auth.Payload["email"])

	orders := entries["orders"]
	require.NotNil(t, orders)
	assert.Equal(t, "PATCH /api/v1/orders/:id/cancel", orders.Action)
	require.NotNil(t, orders.ResourceID)
	assert.Equal(t, orderID, *orders.ResourceID)
}
