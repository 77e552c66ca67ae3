// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user account on the platform.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"size:50;unique;not null" json:"username"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	Bio         string         `gorm:"type:text" json:"bio"`
	Avatar      string         `json:"avatar"`
	AccessLevel AccessLevel    `gorm:"not null;default:3" json:"access_level"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// UserHeader is the public projection of a user used in member lists and
// post attributions. Not persisted.
type UserHeader struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// Header returns the public projection of the user.
func (u *User) Header() UserHeader {
	return UserHeader{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}
