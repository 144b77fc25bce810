package models

import (
	"time"

	"gorm.io/gorm"
)

// Role defines allowed roles in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
	RoleCustomer Role = "customer"
)

// Roles is the closed set of roles a user may hold.
var Roles = []Role{RoleAdmin, RoleDriver, RoleCustomer}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"size:100;not null"`
	Role      Role           `json:"role" gorm:"size:16;not null;default:'customer'"`
	Phone     *string        `json:"phone" gorm:"size:20;uniqueIndex"`
	RealName  string         `json:"real_name" gorm:"size:50"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID       uint
	Username string
	Role     Role
}
