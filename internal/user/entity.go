// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password_hash"`
	FullName      string     `db:"full_name"`
	PhoneNumber   string     `db:"phone_number"`
	Avatar        string     `db:"avatar"`
	Role          string     `db:"role"`
	AccountStatus string     `db:"account_status"`
	EmailVerified bool       `db:"email_verified"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.AccountStatus == StatusActive
}

const (
	RoleAdmin     = "Admin"
	RoleCustomer  = "Customer"
	RoleSupplier  = "Supplier"
	RoleModerator = "Moderator"
)

const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusSuspended = "Suspended"
	StatusBlocked   = "Blocked"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCustomer, RoleSupplier, RoleModerator:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended, StatusBlocked:
		return true
	}
	return false
}
