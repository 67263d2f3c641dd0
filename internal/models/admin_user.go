package models

import (
	"strings"
	"time"
)

// Admin roles accepted by the admin guard.
const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Account statuses shared by admin users and customers.
const (
	AccountStatusActive   = "ACTIVE"
	AccountStatusInactive = "INACTIVE"
)

// IsAdminRole reports whether role grants admin access. Comparison is case-insensitive.
func IsAdminRole(role string) bool {
	switch strings.ToUpper(role) {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AdminUser represents an admin user for the panel.
type AdminUser struct {
	ID           int        `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         string     `db:"role" json:"role"`
	Status       string     `db:"status" json:"status"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the account may log in.
func (u *AdminUser) IsActive() bool {
	return u.Status == AccountStatusActive
}

// User is a storefront customer, created on first checkout.
type User struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
