// internal/services/report_service.go
package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/pricing"
)

type ReportService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalUsers          int64           `json:"total_users"`
	ActiveUsers         int64           `json:"active_users"`
	TotalDevices        int64           `json:"total_devices"`
	DevicesInStock      int64           `json:"devices_in_stock"`
	DevicesAssigned     int64           `json:"devices_assigned"`
	DevicesInRepair     int64           `json:"devices_in_repair"`
	TotalLicenses       int64           `json:"total_licenses"`
	SeatsTotal          int64           `json:"seats_total"`
	SeatsInUse          int64           `json:"seats_in_use"`
	ExpiringLicenses    int64           `json:"expiring_licenses"`
	MonthlySpend        decimal.Decimal `json:"monthly_spend"`
	YearlySpend         decimal.Decimal `json:"yearly_spend"`
	PerpetualSpend      decimal.Decimal `json:"perpetual_spend"`
	NewDevicesThisMonth int64           `json:"new_devices_this_month"`
}

// SpendSummary aggregates the pricing calculator's output over a set
// of licenses.
type SpendSummary struct {
	MonthlySpend   decimal.Decimal `json:"monthly_spend"`
	YearlySpend    decimal.Decimal `json:"yearly_spend"`
	PerpetualSpend decimal.Decimal `json:"perpetual_spend"`
	SeatsTotal     int64           `json:"seats_total"`
	SeatsInUse     int64           `json:"seats_in_use"`
}

// LicenseSpendLine is one row of the license-spend report.
type LicenseSpendLine struct {
	License   models.License        `json:"license"`
	Breakdown pricing.CostBreakdown `json:"breakdown"`
}

// ExpiringLicenseLine is one row of the expiring-license report.
type ExpiringLicenseLine struct {
	License       models.License        `json:"license"`
	DaysRemaining int                   `json:"days_remaining"`
	Breakdown     pricing.CostBreakdown `json:"breakdown"`
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) GetDashboardStats(expiryThresholdDays int) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// User statistics
	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)

	// Device statistics
	s.db.Model(&models.Device{}).Count(&stats.TotalDevices)
	s.db.Model(&models.Device{}).Where("status = ?", models.DeviceStatusInStock).Count(&stats.DevicesInStock)
	s.db.Model(&models.Device{}).Where("status = ?", models.DeviceStatusAssigned).Count(&stats.DevicesAssigned)
	s.db.Model(&models.Device{}).Where("status = ?", models.DeviceStatusInRepair).Count(&stats.DevicesInRepair)
	s.db.Model(&models.Device{}).Where("created_at >= ?", monthStart).Count(&stats.NewDevicesThisMonth)

	// License statistics and spend
	var licenses []models.License
	if err := s.db.Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch licenses: %w", err)
	}

	stats.TotalLicenses = int64(len(licenses))
	spend := AggregateSpend(licenses)
	stats.MonthlySpend = spend.MonthlySpend
	stats.YearlySpend = spend.YearlySpend
	stats.PerpetualSpend = spend.PerpetualSpend
	stats.SeatsTotal = spend.SeatsTotal
	stats.SeatsInUse = spend.SeatsInUse

	if expiryThresholdDays < 0 {
		expiryThresholdDays = pricing.DefaultExpiryThresholdDays
	}
	for _, license := range licenses {
		if pricing.IsExpiringSoon(license.ExpiryDate, expiryThresholdDays) {
			stats.ExpiringLicenses++
		}
	}

	return stats, nil
}

// AggregateSpend sums per-license cost breakdowns. Monthly and yearly
// figures sum the recurring models; perpetual licenses contribute only
// to the one-time figure.
func AggregateSpend(licenses []models.License) SpendSummary {
	summary := SpendSummary{
		MonthlySpend:   decimal.Zero,
		YearlySpend:    decimal.Zero,
		PerpetualSpend: decimal.Zero,
	}

	for i := range licenses {
		license := &licenses[i]
		breakdown := pricing.CalculateCost(license)

		switch license.PricingModel {
		case models.PricingModelMonthly, models.PricingModelYearly:
			summary.MonthlySpend = summary.MonthlySpend.Add(breakdown.MonthlyCost)
			summary.YearlySpend = summary.YearlySpend.Add(breakdown.YearlyCost)
		default:
			summary.PerpetualSpend = summary.PerpetualSpend.Add(breakdown.TotalCost)
		}

		summary.SeatsTotal += int64(license.TotalCount)
		summary.SeatsInUse += int64(license.UsageCount())
	}

	return summary
}

func (s *ReportService) GetLicenseSpendReport() ([]LicenseSpendLine, SpendSummary, error) {
	var licenses []models.License
	if err := s.db.Order("product_name asc").Find(&licenses).Error; err != nil {
		return nil, SpendSummary{}, fmt.Errorf("failed to fetch licenses: %w", err)
	}

	lines := make([]LicenseSpendLine, 0, len(licenses))
	for i := range licenses {
		lines = append(lines, LicenseSpendLine{
			License:   licenses[i],
			Breakdown: pricing.CalculateCost(&licenses[i]),
		})
	}

	return lines, AggregateSpend(licenses), nil
}

func (s *ReportService) GetExpiringLicenseReport(daysThreshold int) ([]ExpiringLicenseLine, error) {
	if daysThreshold < 0 {
		daysThreshold = pricing.DefaultExpiryThresholdDays
	}

	cutoff := time.Now().AddDate(0, 0, daysThreshold)
	var licenses []models.License
	if err := s.db.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Order("expiry_date asc").
		Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch expiring licenses: %w", err)
	}

	now := time.Now()
	lines := make([]ExpiringLicenseLine, 0, len(licenses))
	for i := range licenses {
		license := &licenses[i]
		if !pricing.IsExpiringSoon(license.ExpiryDate, daysThreshold) {
			continue
		}
		lines = append(lines, ExpiringLicenseLine{
			License:       *license,
			DaysRemaining: daysUntil(*license.ExpiryDate, now),
			Breakdown:     pricing.CalculateCost(license),
		})
	}

	return lines, nil
}

// daysUntil counts whole calendar days from now to target; negative
// when the target is already past.
func daysUntil(target, now time.Time) int {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(targetDate.Sub(nowDate).Hours() / 24)
}
