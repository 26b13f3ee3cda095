// internal/services/export_service_test.go
package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk-backend/internal/config"
	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/pricing"
)

func testExportService() *ExportService {
	return NewLocalExportService(&config.Config{})
}

func TestRenderLicenseSpendCSV(t *testing.T) {
	license := models.License{
		ProductName:    "Office Suite",
		Vendor:         "Contoso",
		PricingModel:   models.PricingModelMonthly,
		UnitPrice:      decimal.NewFromInt(10),
		TotalCount:     10,
		AvailableCount: 5,
	}
	lines := []LicenseSpendLine{
		{License: license, Breakdown: pricing.CalculateCost(&license)},
	}
	summary := AggregateSpend([]models.License{license})

	data, err := testExportService().RenderLicenseSpendCSV(lines, summary)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header, one line, totals

	assert.Equal(t, []string{"product", "vendor", "pricing_model", "unit_price", "seats_total", "seats_in_use", "monthly_cost", "yearly_cost", "total_cost"}, records[0])
	assert.Equal(t, []string{"Office Suite", "Contoso", "monthly", "10.00", "10", "5", "50.00", "600.00", "50.00"}, records[1])
	assert.Equal(t, "TOTAL", records[2][0])
	assert.Equal(t, "50.00", records[2][6])
}

func TestRenderExpiringLicensesCSV(t *testing.T) {
	expiry := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	license := models.License{
		ProductName:    "IDE",
		Vendor:         "JetForge",
		PricingModel:   models.PricingModelYearly,
		UnitPrice:      decimal.NewFromInt(1200),
		TotalCount:     2,
		AvailableCount: 0,
		ExpiryDate:     &expiry,
	}
	lines := []ExpiringLicenseLine{
		{License: license, DaysRemaining: 20, Breakdown: pricing.CalculateCost(&license)},
	}

	data, err := testExportService().RenderExpiringLicensesCSV(lines)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"IDE", "JetForge", "2026-09-15", "20", "2", "2400.00"}, records[1])
}

func TestUploadReportWithoutCredentials(t *testing.T) {
	_, err := testExportService().UploadReport("license-spend", []byte("a,b\n"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
