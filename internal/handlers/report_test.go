// internal/handlers/report_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func daysParamFor(t *testing.T, query string) (int, bool, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &ReportHandler{expiryDays: 45}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/reports/expiring-licenses"+query, nil)

	days, ok := h.daysParam(c)
	return days, ok, w.Code
}

func TestDaysParamDefaultsToConfiguredWindow(t *testing.T) {
	days, ok, _ := daysParamFor(t, "")
	assert.True(t, ok)
	assert.Equal(t, 45, days)
}

func TestDaysParamHonorsExplicitZero(t *testing.T) {
	days, ok, _ := daysParamFor(t, "?days=0")
	assert.True(t, ok)
	assert.Equal(t, 0, days)
}

func TestDaysParamRejectsNegative(t *testing.T) {
	_, ok, code := daysParamFor(t, "?days=-5")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, code)
}
