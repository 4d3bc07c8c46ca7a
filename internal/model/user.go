package model

import (
	"time"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an account row. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null"`
	Role        string    `json:"role" gorm:"type:varchar(20);not null;default:'customer'"`
	ContactName string    `json:"contact_name" gorm:"type:varchar(255)"`
	Address     string    `json:"address" gorm:"type:text"`
	PhotoURL    string    `json:"photo_url" gorm:"type:varchar(512)"`
	AdminNotes  string    `json:"admin_notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
