// internal/services/alert_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/pricing"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

// AlertService turns soon-to-expire licenses into persistent alerts
// that admins can list and acknowledge.
type AlertService struct {
	db *gorm.DB
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db}
}

// ScanExpiringLicenses creates an unread alert for every license whose
// expiry entered the look-ahead window and has no open alert yet.
// Returns the number of alerts created.
func (s *AlertService) ScanExpiringLicenses(daysThreshold int) (int, error) {
	if daysThreshold < 0 {
		daysThreshold = pricing.DefaultExpiryThresholdDays
	}

	cutoff := time.Now().AddDate(0, 0, daysThreshold)
	var licenses []models.License
	if err := s.db.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Find(&licenses).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch expiring licenses: %w", err)
	}

	created := 0
	for i := range licenses {
		license := &licenses[i]
		if !pricing.IsExpiringSoon(license.ExpiryDate, daysThreshold) {
			continue
		}

		var open int64
		if err := s.db.Model(&models.ExpiryAlert{}).
			Where("license_id = ? AND status = ?", license.ID, models.AlertStatusUnread).
			Count(&open).Error; err != nil {
			return created, fmt.Errorf("failed to check open alerts: %w", err)
		}
		if open > 0 {
			continue
		}

		alert := &models.ExpiryAlert{
			LicenseID:     license.ID,
			ExpiryDate:    *license.ExpiryDate,
			DaysThreshold: daysThreshold,
			Message: fmt.Sprintf("%s (%s) expires on %s",
				license.ProductName, license.Vendor,
				license.ExpiryDate.Format("2006-01-02")),
			Status: models.AlertStatusUnread,
		}
		if err := s.db.Create(alert).Error; err != nil {
			return created, fmt.Errorf("failed to create expiry alert: %w", err)
		}
		created++
	}

	if created > 0 {
		logrus.WithField("count", created).Info("Created license expiry alerts")
	}

	return created, nil
}

func (s *AlertService) ListAlerts(params utils.PaginationParams, unreadOnly bool) ([]models.ExpiryAlert, int64, error) {
	query := s.db.Model(&models.ExpiryAlert{}).Preload("License")
	if unreadOnly {
		query = query.Where("status = ?", models.AlertStatusUnread)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	allowedSortFields := []string{"created_at", "expiry_date", "status"}
	query = utils.ApplySort(query, params, allowedSortFields, "expiry_date")
	query = utils.ApplyPagination(query, params)

	var alerts []models.ExpiryAlert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	return alerts, total, nil
}

func (s *AlertService) MarkAlertRead(id uuid.UUID) (*models.ExpiryAlert, error) {
	var alert models.ExpiryAlert
	if err := s.db.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("alert not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if alert.Status == models.AlertStatusRead {
		return &alert, nil
	}

	now := time.Now()
	alert.Status = models.AlertStatusRead
	alert.ReadAt = &now
	if err := s.db.Save(&alert).Error; err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	return &alert, nil
}

// RunPeriodicScan scans on startup and then once a day until the
// stop channel closes.
func (s *AlertService) RunPeriodicScan(daysThreshold int, stop <-chan struct{}) {
	if _, err := s.ScanExpiringLicenses(daysThreshold); err != nil {
		logrus.WithError(err).Error("Expiry alert scan failed")
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.ScanExpiringLicenses(daysThreshold); err != nil {
				logrus.WithError(err).Error("Expiry alert scan failed")
			}
		case <-stop:
			return
		}
	}
}
