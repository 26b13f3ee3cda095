// internal/models/audit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	OldValues    JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ExpiryAlert records a license whose expiry date entered the
// look-ahead window. One open alert per license at a time.
type ExpiryAlert struct {
	BaseModel
	LicenseID     uuid.UUID   `json:"license_id" gorm:"type:uuid;not null;index"`
	ExpiryDate    time.Time   `json:"expiry_date" gorm:"type:date;not null"`
	DaysThreshold int         `json:"days_threshold" gorm:"not null"`
	Message       string      `json:"message" gorm:"type:text;not null"`
	Status        AlertStatus `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	ReadAt        *time.Time  `json:"read_at"`

	// Relationships
	License License `json:"license,omitempty" gorm:"foreignKey:LicenseID"`
}
