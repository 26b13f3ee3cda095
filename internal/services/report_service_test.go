// internal/services/report_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/assetdesk/assetdesk-backend/internal/models"
)

func TestAggregateSpendMixedModels(t *testing.T) {
	licenses := []models.License{
		{
			ProductName:    "Office Suite",
			PricingModel:   models.PricingModelMonthly,
			UnitPrice:      decimal.NewFromInt(10),
			TotalCount:     10,
			AvailableCount: 5, // 5 seats in use -> 50/month, 600/year
		},
		{
			ProductName:    "IDE",
			PricingModel:   models.PricingModelYearly,
			UnitPrice:      decimal.NewFromInt(1200),
			TotalCount:     2,
			AvailableCount: 0, // 2 seats in use -> 2400/year, 200/month
		},
		{
			ProductName:    "CAD Tool",
			PricingModel:   models.PricingModelPerpetual,
			UnitPrice:      decimal.NewFromInt(500),
			TotalCount:     3,
			AvailableCount: 0, // 3 seats in use -> 1500 one-time
		},
	}

	summary := AggregateSpend(licenses)

	assert.True(t, summary.MonthlySpend.Equal(decimal.NewFromInt(250)), summary.MonthlySpend.String())
	assert.True(t, summary.YearlySpend.Equal(decimal.NewFromInt(3000)), summary.YearlySpend.String())
	assert.True(t, summary.PerpetualSpend.Equal(decimal.NewFromInt(1500)), summary.PerpetualSpend.String())
	assert.Equal(t, int64(15), summary.SeatsTotal)
	assert.Equal(t, int64(10), summary.SeatsInUse)
}

func TestAggregateSpendPerpetualExcludedFromRecurring(t *testing.T) {
	licenses := []models.License{
		{
			ProductName:    "CAD Tool",
			PricingModel:   models.PricingModelPerpetual,
			UnitPrice:      decimal.NewFromInt(500),
			TotalCount:     3,
			AvailableCount: 1,
		},
	}

	summary := AggregateSpend(licenses)

	assert.True(t, summary.MonthlySpend.IsZero())
	assert.True(t, summary.YearlySpend.IsZero())
	assert.True(t, summary.PerpetualSpend.Equal(decimal.NewFromInt(1000)))
}

func TestAggregateSpendEmpty(t *testing.T) {
	summary := AggregateSpend(nil)

	assert.True(t, summary.MonthlySpend.IsZero())
	assert.True(t, summary.YearlySpend.IsZero())
	assert.True(t, summary.PerpetualSpend.IsZero())
	assert.Equal(t, int64(0), summary.SeatsTotal)
	assert.Equal(t, int64(0), summary.SeatsInUse)
}
