// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Department   string     `json:"department" gorm:"size:100;index"`
	JobTitle     string     `json:"job_title" gorm:"size:100"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Assignments []DeviceAssignment  `json:"assignments,omitempty" gorm:"foreignKey:UserID"`
	Allocations []LicenseAllocation `json:"allocations,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
