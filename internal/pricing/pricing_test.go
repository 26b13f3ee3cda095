// internal/pricing/pricing_test.go
package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/assetdesk/assetdesk-backend/internal/models"
)

func newLicense(model models.PricingModel, unitPrice string, total, available int) *models.License {
	return &models.License{
		ProductName:    "Test Product",
		PricingModel:   model,
		UnitPrice:      decimal.RequireFromString(unitPrice),
		TotalCount:     total,
		AvailableCount: available,
	}
}

func TestCalculateCostMonthly(t *testing.T) {
	license := newLicense(models.PricingModelMonthly, "10", 10, 5)

	breakdown := CalculateCostForUsage(license, 5)

	assert.Equal(t, "50.00", breakdown.MonthlyCost.StringFixed(2))
	assert.Equal(t, "600.00", breakdown.YearlyCost.StringFixed(2))
	assert.Equal(t, "50.00", breakdown.TotalCost.StringFixed(2))
	assert.Equal(t, 5, breakdown.UsageCount)
	assert.Equal(t, models.PricingModelMonthly, breakdown.PricingModel)
}

func TestCalculateCostYearly(t *testing.T) {
	license := newLicense(models.PricingModelYearly, "1200", 5, 3)

	breakdown := CalculateCostForUsage(license, 2)

	assert.Equal(t, "2400.00", breakdown.YearlyCost.StringFixed(2))
	assert.Equal(t, "200.00", breakdown.MonthlyCost.StringFixed(2))
	assert.Equal(t, "2400.00", breakdown.TotalCost.StringFixed(2))
}

func TestCalculateCostYearlyRoundsMonthly(t *testing.T) {
	// 100 / 12 = 8.3333... rounds half up to 8.33
	license := newLicense(models.PricingModelYearly, "100", 1, 0)

	breakdown := CalculateCost(license)

	assert.Equal(t, "8.33", breakdown.MonthlyCost.StringFixed(2))
	assert.Equal(t, "100.00", breakdown.YearlyCost.StringFixed(2))
}

func TestCalculateCostPerpetual(t *testing.T) {
	license := newLicense(models.PricingModelPerpetual, "500", 3, 0)

	breakdown := CalculateCostForUsage(license, 3)

	assert.Equal(t, "1500.00", breakdown.TotalCost.StringFixed(2))
	assert.True(t, breakdown.MonthlyCost.IsZero())
	assert.True(t, breakdown.YearlyCost.IsZero())
}

func TestCalculateCostDerivesUsage(t *testing.T) {
	license := newLicense(models.PricingModelMonthly, "10", 10, 4)

	breakdown := CalculateCost(license)

	assert.Equal(t, 6, breakdown.UsageCount)
	assert.Equal(t, "60.00", breakdown.MonthlyCost.StringFixed(2))
}

func TestCalculateCostUnknownModelFallsToPerpetual(t *testing.T) {
	license := newLicense(models.PricingModel("site"), "100", 2, 0)

	breakdown := CalculateCostForUsage(license, 2)

	assert.Equal(t, "200.00", breakdown.TotalCost.StringFixed(2))
	assert.True(t, breakdown.MonthlyCost.IsZero())
	assert.True(t, breakdown.YearlyCost.IsZero())
}

func TestCalculateCostZeroUsage(t *testing.T) {
	license := newLicense(models.PricingModelMonthly, "10", 5, 5)

	breakdown := CalculateCost(license)

	assert.Equal(t, 0, breakdown.UsageCount)
	assert.True(t, breakdown.MonthlyCost.IsZero())
	assert.True(t, breakdown.YearlyCost.IsZero())
	assert.True(t, breakdown.TotalCost.IsZero())
}

func TestIsExpiringSoonNilExpiry(t *testing.T) {
	assert.False(t, IsExpiringSoon(nil, 30))
	assert.False(t, IsExpiringSoon(nil, 0))
}

func TestIsExpiringSoonWindow(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

	today := now
	boundary := now.AddDate(0, 0, 30)
	beyond := now.AddDate(0, 0, 31)
	past := now.AddDate(0, 0, -10)

	assert.True(t, IsExpiringSoonAt(&today, 30, now))
	assert.True(t, IsExpiringSoonAt(&boundary, 30, now))
	assert.False(t, IsExpiringSoonAt(&beyond, 30, now))
	assert.True(t, IsExpiringSoonAt(&past, 30, now))
}

func TestIsExpiringSoonIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	// Stored as a date: midnight on the boundary day.
	boundary := time.Date(2026, time.April, 14, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsExpiringSoonAt(&boundary, 30, now))
}
