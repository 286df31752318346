// internal/domain/user/entity.go
package user

import (
	"time"

	"gorm.io/gorm"
)

// User represents a customer account
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string `gorm:"not null;size:255" json:"-"`
	Name         string `gorm:"not null;size:255" json:"name"`
	Phone        string `gorm:"size:20" json:"phone"`

	// Default delivery address
	AddressStreet string `gorm:"size:255" json:"address_street"`
	AddressCity   string `gorm:"size:100" json:"address_city"`
	AddressArea   string `gorm:"size:100" json:"address_area"`

	IsAdmin     bool       `gorm:"default:false" json:"is_admin"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for User model
func (User) TableName() string {
	return "users"
}
