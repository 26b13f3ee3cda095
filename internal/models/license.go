// internal/models/license.go
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// License is a purchased software license with a fixed seat pool.
// AvailableCount never exceeds TotalCount; the allocation service
// maintains that invariant inside DB transactions.
type License struct {
	BaseModel
	ProductName    string          `json:"product_name" gorm:"size:255;not null;index"`
	Vendor         string          `json:"vendor" gorm:"size:100;index"`
	LicenseKey     string          `json:"license_key,omitempty" gorm:"size:255"`
	PricingModel   PricingModel    `json:"pricing_model" gorm:"type:varchar(20);not null;default:'perpetual'"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null;default:0"`
	TotalCount     int             `json:"total_count" gorm:"not null;default:0"`
	AvailableCount int             `json:"available_count" gorm:"not null;default:0"`
	ExpiryDate     *time.Time      `json:"expiry_date" gorm:"type:date;index"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Allocations []LicenseAllocation `json:"allocations,omitempty" gorm:"foreignKey:LicenseID"`
}

// UsageCount is the number of seats currently consumed.
func (l *License) UsageCount() int {
	return l.TotalCount - l.AvailableCount
}

// ConsumeSeat takes one seat from the pool, refusing to go below zero.
func (l *License) ConsumeSeat() error {
	if l.AvailableCount <= 0 {
		return errors.New("no seats available for this license")
	}
	l.AvailableCount--
	return nil
}

// RestoreSeat returns one seat to the pool, never exceeding the total.
// Restoring at capacity is a no-op rather than an error: a stale
// double-release must not inflate the pool.
func (l *License) RestoreSeat() {
	if l.AvailableCount < l.TotalCount {
		l.AvailableCount++
	}
}

// ResizePool changes the total seat count, preserving the seats in use.
// Shrinking below the consumed count would break available <= total.
func (l *License) ResizePool(newTotal int) error {
	used := l.UsageCount()
	if newTotal < used {
		return fmt.Errorf("total count %d is below the %d seats in use", newTotal, used)
	}
	l.TotalCount = newTotal
	l.AvailableCount = newTotal - used
	return nil
}

type LicenseAllocation struct {
	BaseModel
	LicenseID     uuid.UUID        `json:"license_id" gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	DeviceID      *uuid.UUID       `json:"device_id" gorm:"type:uuid;index"`
	AllocatedByID uuid.UUID        `json:"allocated_by_id" gorm:"type:uuid;not null"`
	AllocatedAt   time.Time        `json:"allocated_at" gorm:"not null"`
	ReleasedAt    *time.Time       `json:"released_at"`
	Status        AllocationStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	// Relationships
	License     License `json:"license,omitempty" gorm:"foreignKey:LicenseID"`
	User        User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Device      *Device `json:"device,omitempty" gorm:"foreignKey:DeviceID"`
	AllocatedBy User    `json:"allocated_by,omitempty" gorm:"foreignKey:AllocatedByID"`
}
