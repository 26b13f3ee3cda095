// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

func newProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	chain := append([]gin.HandlerFunc{AuthRequired()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": c.GetString("username"),
			"role":     c.GetString("role"),
		})
	})

	r.GET("/protected", chain...)
	return r
}

func issueToken(t *testing.T, role string) string {
	t.Helper()
	utils.SetJWTSecret("middleware-test-secret")
	token, err := utils.GenerateJWT(uuid.New(), "tchen", role, "Engineering", 1)
	require.NoError(t, err)
	return token
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	r := newProtectedRouter()

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	r := newProtectedRouter()

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	token := issueToken(t, "employee")
	r := newProtectedRouter()

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tchen")
}

func TestManagerRequiredBlocksEmployees(t *testing.T) {
	token := issueToken(t, "employee")
	r := newProtectedRouter(ManagerRequired())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestManagerRequiredAllowsManagersAndAdmins(t *testing.T) {
	for _, role := range []string{"manager", "admin"} {
		token := issueToken(t, role)
		r := newProtectedRouter(ManagerRequired())

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, role)
	}
}

func TestAdminRequiredBlocksManagers(t *testing.T) {
	token := issueToken(t, "manager")
	r := newProtectedRouter(AdminRequired())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuthPassesThroughWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalAuth(), func(c *gin.Context) {
		_, authenticated := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	req := httptest.NewRequest("GET", "/open", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")
}
