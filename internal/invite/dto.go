// AngelaMos | 2026
// dto.go

package invite

import (
	"time"
)

type CreateInviteRequest struct {
	ThreadID string `json:"thread_id" validate:"required,uuid"`
	Email    string `json:"email"     validate:"omitempty,email,max=254"`
}

type RespondRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// CreateResult carries the raw token. It is returned once and never
// stored.
type CreateResult struct {
	InviteID  string    `json:"invite_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RespondResult struct {
	InviteID      string `json:"invite_id"`
	ThreadID      string `json:"thread_id"`
	Status        string `json:"status"`
	MemberID      string `json:"member_id,omitempty"`
	AlreadyMember bool   `json:"already_member,omitempty"`
}

type InviteResponse struct {
	ID          string     `json:"id"`
	ThreadID    string     `json:"thread_id"`
	ThreadName  string     `json:"thread_name"`
	Email       *string    `json:"email,omitempty"`
	UserID      *string    `json:"user_id,omitempty"`
	InviterID   *string    `json:"inviter_id,omitempty"`
	Status      string     `json:"status"`
	Expired     bool       `json:"expired"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToInviteResponse(inv *Invite, now time.Time) InviteResponse {
	return InviteResponse{
		ID:          inv.ID,
		ThreadID:    inv.ThreadID,
		ThreadName:  inv.ThreadName,
		Email:       inv.Email,
		UserID:      inv.UserID,
		InviterID:   inv.InviterID,
		Status:      inv.Status,
		Expired:     inv.IsPending() && inv.IsExpired(now),
		ExpiresAt:   inv.ExpiresAt,
		RespondedAt: inv.RespondedAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func ToInviteResponseList(invites []Invite, now time.Time) []InviteResponse {
	out := make([]InviteResponse, 0, len(invites))
	for i := range invites {
		out = append(out, ToInviteResponse(&invites[i], now))
	}
	return out
}
