// internal/models/device.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Device struct {
	BaseModel
	AssetTag       string          `json:"asset_tag" gorm:"uniqueIndex;size:32;not null"`
	SerialNumber   string          `json:"serial_number" gorm:"uniqueIndex;size:100;not null"`
	ModelName      string          `json:"model_name" gorm:"size:255;not null"`
	Manufacturer   string          `json:"manufacturer" gorm:"size:100"`
	Category       string          `json:"category" gorm:"size:100;index"`
	PurchasePrice  decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2);default:0"`
	PurchaseDate   *time.Time      `json:"purchase_date" gorm:"type:date"`
	WarrantyExpiry *time.Time      `json:"warranty_expiry" gorm:"type:date"`
	Status         DeviceStatus    `json:"status" gorm:"type:varchar(20);default:'in_stock';index"`
	Tags           pq.StringArray  `json:"tags" gorm:"type:text[]"`
	Specifications JSONB           `json:"specifications" gorm:"type:jsonb"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Assignments []DeviceAssignment `json:"assignments,omitempty" gorm:"foreignKey:DeviceID"`
}

type DeviceAssignment struct {
	BaseModel
	DeviceID      uuid.UUID        `json:"device_id" gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	AssignedByID  uuid.UUID        `json:"assigned_by_id" gorm:"type:uuid;not null"`
	AssignedAt    time.Time        `json:"assigned_at" gorm:"not null"`
	ReturnedAt    *time.Time       `json:"returned_at"`
	ConditionNote string           `json:"condition_note,omitempty" gorm:"type:text"`
	Status        AssignmentStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	// Relationships
	Device     Device `json:"device,omitempty" gorm:"foreignKey:DeviceID"`
	User       User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AssignedBy User   `json:"assigned_by,omitempty" gorm:"foreignKey:AssignedByID"`
}
