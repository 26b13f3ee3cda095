// internal/handlers/license_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCostPreviewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// CostPreview never touches the database, so no service is needed.
	h := NewLicenseHandler(nil)
	r.POST("/licenses/cost-preview", h.CostPreview)
	return r
}

func postCostPreview(t *testing.T, r *gin.Engine, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	jsonData, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/licenses/cost-preview", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCost(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Cost         map[string]interface{} `json:"cost"`
			ExpiringSoon bool                   `json:"expiring_soon"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.True(t, response.Success)
	return response.Data.Cost
}

func TestCostPreviewMonthly(t *testing.T) {
	r := newCostPreviewRouter()

	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "monthly",
		"unit_price":      "10",
		"total_count":     10,
		"available_count": 5,
	})

	require.Equal(t, http.StatusOK, w.Code)
	cost := decodeCost(t, w)
	assert.Equal(t, "50", cost["monthly_cost"])
	assert.Equal(t, "600", cost["yearly_cost"])
	assert.Equal(t, "50", cost["total_cost"])
	assert.Equal(t, float64(5), cost["usage_count"])
	assert.Equal(t, "monthly", cost["pricing_model"])
}

func TestCostPreviewYearlyRounding(t *testing.T) {
	r := newCostPreviewRouter()

	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "yearly",
		"unit_price":      "100",
		"total_count":     1,
		"available_count": 0,
	})

	require.Equal(t, http.StatusOK, w.Code)
	cost := decodeCost(t, w)
	assert.Equal(t, "100", cost["yearly_cost"])
	assert.Equal(t, "8.33", cost["monthly_cost"])
	assert.Equal(t, "100", cost["total_cost"])
}

func TestCostPreviewUsageOverride(t *testing.T) {
	r := newCostPreviewRouter()

	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "perpetual",
		"unit_price":      "500",
		"total_count":     10,
		"available_count": 10,
		"usage_count":     3,
	})

	require.Equal(t, http.StatusOK, w.Code)
	cost := decodeCost(t, w)
	assert.Equal(t, "1500", cost["total_cost"])
	assert.Equal(t, "0", cost["monthly_cost"])
	assert.Equal(t, "0", cost["yearly_cost"])
	assert.Equal(t, float64(3), cost["usage_count"])
}

func TestCostPreviewReportsExpiringSoon(t *testing.T) {
	r := newCostPreviewRouter()

	expiry := time.Now().AddDate(0, 0, 10).Format(time.RFC3339)
	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "yearly",
		"unit_price":      "100",
		"total_count":     1,
		"available_count": 0,
		"expiry_date":     expiry,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expiring_soon":true`)
}

func TestCostPreviewZeroThresholdMeansExpiringToday(t *testing.T) {
	r := newCostPreviewRouter()

	expiry := time.Now().AddDate(0, 0, 1).Format(time.RFC3339)
	payload := map[string]interface{}{
		"pricing_model":   "yearly",
		"unit_price":      "100",
		"total_count":     1,
		"available_count": 0,
		"expiry_date":     expiry,
		"days_threshold":  0,
	}

	// Expires tomorrow: outside a zero-day window.
	w := postCostPreview(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expiring_soon":false`)

	// Same license with the threshold omitted: default window applies.
	delete(payload, "days_threshold")
	w = postCostPreview(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expiring_soon":true`)
}

func TestCostPreviewRejectsUnknownPricingModel(t *testing.T) {
	r := newCostPreviewRouter()

	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "weekly",
		"unit_price":      "10",
		"total_count":     1,
		"available_count": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCostPreviewRejectsInvalidSeatCounts(t *testing.T) {
	r := newCostPreviewRouter()

	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "monthly",
		"unit_price":      "10",
		"total_count":     2,
		"available_count": 5,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCostPreviewRejectsNegativeUnitPrice(t *testing.T) {
	r := newCostPreviewRouter()

	w := postCostPreview(t, r, map[string]interface{}{
		"pricing_model":   "monthly",
		"unit_price":      "-10",
		"total_count":     5,
		"available_count": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
