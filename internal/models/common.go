// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleEmployee UserRole = "employee"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type DeviceStatus string

const (
	DeviceStatusInStock  DeviceStatus = "in_stock"
	DeviceStatusAssigned DeviceStatus = "assigned"
	DeviceStatusInRepair DeviceStatus = "in_repair"
	DeviceStatusRetired  DeviceStatus = "retired"
)

type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusReturned AssignmentStatus = "returned"
)

// PricingModel is the billing cadence of a software license.
type PricingModel string

const (
	PricingModelMonthly   PricingModel = "monthly"
	PricingModelYearly    PricingModel = "yearly"
	PricingModelPerpetual PricingModel = "perpetual"
)

type AllocationStatus string

const (
	AllocationStatusActive   AllocationStatus = "active"
	AllocationStatusReleased AllocationStatus = "released"
)

type AlertStatus string

const (
	AlertStatusUnread AlertStatus = "unread"
	AlertStatusRead   AlertStatus = "read"
)
