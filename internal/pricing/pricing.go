// internal/pricing/pricing.go

// Package pricing derives cost figures for software licenses and flags
// licenses whose expiry date falls inside a look-ahead window. All
// functions are pure; persistence and validation live with the callers.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetdesk/assetdesk-backend/internal/models"
)

// DefaultExpiryThresholdDays is the default look-ahead window for
// expiry checks.
const DefaultExpiryThresholdDays = 30

const monthsPerYear = 12

var twelve = decimal.NewFromInt(monthsPerYear)

// CostBreakdown is the derived cost view of a license. Monetary values
// are rounded to 2 decimal places, half up.
type CostBreakdown struct {
	MonthlyCost  decimal.Decimal     `json:"monthly_cost"`
	YearlyCost   decimal.Decimal     `json:"yearly_cost"`
	TotalCost    decimal.Decimal     `json:"total_cost"`
	UsageCount   int                 `json:"usage_count"`
	PricingModel models.PricingModel `json:"pricing_model"`
}

// CalculateCost computes the cost breakdown using the license's derived
// usage count (total minus available seats).
func CalculateCost(license *models.License) CostBreakdown {
	return CalculateCostForUsage(license, license.UsageCount())
}

// CalculateCostForUsage computes the cost breakdown for an explicit
// usage count. Any pricing model other than monthly or yearly is
// treated as perpetual; strict enum validation happens at the API
// boundary.
func CalculateCostForUsage(license *models.License, usageCount int) CostBreakdown {
	usage := decimal.NewFromInt(int64(usageCount))

	breakdown := CostBreakdown{
		MonthlyCost:  decimal.Zero.Round(2),
		YearlyCost:   decimal.Zero.Round(2),
		TotalCost:    decimal.Zero.Round(2),
		UsageCount:   usageCount,
		PricingModel: license.PricingModel,
	}

	switch license.PricingModel {
	case models.PricingModelMonthly:
		monthly := license.UnitPrice.Mul(usage)
		breakdown.MonthlyCost = monthly.Round(2)
		breakdown.YearlyCost = monthly.Mul(twelve).Round(2)
		breakdown.TotalCost = breakdown.MonthlyCost

	case models.PricingModelYearly:
		yearly := license.UnitPrice.Mul(usage)
		breakdown.YearlyCost = yearly.Round(2)
		breakdown.MonthlyCost = yearly.DivRound(twelve, 2)
		breakdown.TotalCost = breakdown.YearlyCost

	default: // perpetual
		breakdown.TotalCost = license.UnitPrice.Mul(usage).Round(2)
	}

	return breakdown
}

// IsExpiringSoon reports whether the expiry date falls within the next
// daysThreshold days of the current date. A nil expiry never expires.
func IsExpiringSoon(expiryDate *time.Time, daysThreshold int) bool {
	return IsExpiringSoonAt(expiryDate, daysThreshold, time.Now())
}

// IsExpiringSoonAt is IsExpiringSoon evaluated against an explicit
// "today". Comparison is at date granularity: the boundary day
// (today + threshold) counts as expiring.
func IsExpiringSoonAt(expiryDate *time.Time, daysThreshold int, now time.Time) bool {
	if expiryDate == nil {
		return false
	}

	cutoff := truncateToDate(now).AddDate(0, 0, daysThreshold)
	return !truncateToDate(*expiryDate).After(cutoff)
}

// truncateToDate drops the time-of-day and zone so that dates stored
// in different locations compare as calendar days.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
