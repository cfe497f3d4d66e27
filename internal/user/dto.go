// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

// UpdateUserRequest is a partial update: nil fields are left untouched.
type UpdateUserRequest struct {
	FullName    *string `json:"full_name,omitempty"    validate:"omitempty,min=1,max=100"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	Avatar      *string `json:"avatar,omitempty"       validate:"omitempty,max=2048"`
}

func (r UpdateUserRequest) ApplyTo(u *User) {
	if r.FullName != nil {
		u.FullName = *r.FullName
	}
	if r.PhoneNumber != nil {
		u.PhoneNumber = *r.PhoneNumber
	}
	if r.Avatar != nil {
		u.Avatar = *r.Avatar
	}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=Admin Customer Supplier Moderator"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Inactive Suspended Blocked"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	Avatar        string    `json:"avatar,omitempty"`
	Role          string    `json:"role"`
	AccountStatus string    `json:"account_status"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicUser is what other users see: no contact details.
type PublicUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar,omitempty"`
}

type ListUsersParams struct {
	core.PageParams
	Search string `json:"search"`
	Role   string `json:"role"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		PhoneNumber:   u.PhoneNumber,
		Avatar:        u.Avatar,
		Role:          u.Role,
		AccountStatus: u.AccountStatus,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}

func ToPublicUserList(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, PublicUser{ID: u.ID, FullName: u.FullName, Avatar: u.Avatar})
	}
	return out
}
