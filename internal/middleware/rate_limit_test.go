// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newExportRouter(perMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// The auth middleware normally sets user_id; stand in for it here.
	r.POST("/export", func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}, ExportRateLimit(perMinute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	return r
}

func exportAs(r *gin.Engine, userID string) int {
	req := httptest.NewRequest("POST", "/export", nil)
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestExportRateLimitExhaustsBudget(t *testing.T) {
	r := newExportRouter(2)

	assert.Equal(t, http.StatusCreated, exportAs(r, "user-a"))
	assert.Equal(t, http.StatusCreated, exportAs(r, "user-a"))
	assert.Equal(t, http.StatusTooManyRequests, exportAs(r, "user-a"))
}

func TestExportRateLimitIsPerAccount(t *testing.T) {
	r := newExportRouter(1)

	// Both callers share the test client IP; budgets stay separate.
	assert.Equal(t, http.StatusCreated, exportAs(r, "user-a"))
	assert.Equal(t, http.StatusTooManyRequests, exportAs(r, "user-a"))
	assert.Equal(t, http.StatusCreated, exportAs(r, "user-b"))
}

func TestExportRateLimitFallsBackToIPWhenAnonymous(t *testing.T) {
	r := newExportRouter(1)

	assert.Equal(t, http.StatusCreated, exportAs(r, ""))
	assert.Equal(t, http.StatusTooManyRequests, exportAs(r, ""))
}

func TestGeneralRateLimitAllowsBurstThenBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", GeneralRateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	blocked := false
	for i := 0; i < 11; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
		if w.Code == http.StatusTooManyRequests {
			blocked = true
		}
	}

	assert.True(t, blocked)
}
