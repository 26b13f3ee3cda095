// internal/services/export_service.go
package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/assetdesk/assetdesk-backend/internal/config"
)

// ExportService renders reports as CSV and uploads them to S3. When no
// AWS credentials are configured it still renders CSV for direct
// download; only the upload path is disabled.
type ExportService struct {
	s3Client *s3.S3
	config   *config.Config
}

type ExportResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Size     int    `json:"size"`
	Rows     int    `json:"rows"`
}

func NewExportService(cfg *config.Config) (*ExportService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local development: CSV rendering only, no upload.
		return &ExportService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &ExportService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// NewLocalExportService builds an export service that can render CSV
// but has no upload target.
func NewLocalExportService(cfg *config.Config) *ExportService {
	return &ExportService{config: cfg}
}

// RenderLicenseSpendCSV turns spend report lines into CSV bytes.
func (s *ExportService) RenderLicenseSpendCSV(lines []LicenseSpendLine, summary SpendSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"product", "vendor", "pricing_model", "unit_price", "seats_total", "seats_in_use", "monthly_cost", "yearly_cost", "total_cost"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, line := range lines {
		record := []string{
			line.License.ProductName,
			line.License.Vendor,
			string(line.License.PricingModel),
			line.License.UnitPrice.StringFixed(2),
			strconv.Itoa(line.License.TotalCount),
			strconv.Itoa(line.Breakdown.UsageCount),
			line.Breakdown.MonthlyCost.StringFixed(2),
			line.Breakdown.YearlyCost.StringFixed(2),
			line.Breakdown.TotalCost.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	totals := []string{"TOTAL", "", "", "",
		strconv.FormatInt(summary.SeatsTotal, 10),
		strconv.FormatInt(summary.SeatsInUse, 10),
		summary.MonthlySpend.StringFixed(2),
		summary.YearlySpend.StringFixed(2),
		summary.PerpetualSpend.StringFixed(2),
	}
	if err := w.Write(totals); err != nil {
		return nil, fmt.Errorf("failed to write CSV totals: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderExpiringLicensesCSV turns expiring-license report lines into
// CSV bytes.
func (s *ExportService) RenderExpiringLicensesCSV(lines []ExpiringLicenseLine) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"product", "vendor", "expiry_date", "days_remaining", "seats_in_use", "yearly_cost"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, line := range lines {
		expiry := ""
		if line.License.ExpiryDate != nil {
			expiry = line.License.ExpiryDate.Format("2006-01-02")
		}
		record := []string{
			line.License.ProductName,
			line.License.Vendor,
			expiry,
			strconv.Itoa(line.DaysRemaining),
			strconv.Itoa(line.Breakdown.UsageCount),
			line.Breakdown.YearlyCost.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// UploadReport stores rendered CSV bytes under reports/<name>-<ts>.csv
// in the configured bucket.
func (s *ExportService) UploadReport(name string, data []byte, rows int) (*ExportResult, error) {
	if s.s3Client == nil {
		return nil, errors.New("report upload is not configured (missing AWS credentials)")
	}

	key := fmt.Sprintf("reports/%s-%s.csv", name, time.Now().Format("20060102-150405"))

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload report to S3: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"bucket": s.config.AWS.S3Bucket,
		"key":    key,
		"size":   len(data),
	}).Info("Report uploaded")

	return &ExportResult{
		Key:      key,
		Location: fmt.Sprintf("s3://%s/%s", s.config.AWS.S3Bucket, key),
		Size:     len(data),
		Rows:     rows,
	}, nil
}
