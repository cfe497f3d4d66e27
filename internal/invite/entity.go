// AngelaMos | 2026
// entity.go

package invite

import (
	"strings"
	"time"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// DefaultTTL is how long an invite stays answerable.
const DefaultTTL = 7 * 24 * time.Hour

type Invite struct {
	ID          string     `db:"id"`
	ThreadID    string     `db:"thread_id"`
	ThreadName  string     `db:"thread_name"`
	Email       *string    `db:"email"`
	UserID      *string    `db:"user_id"`
	InviterID   *string    `db:"inviter_id"`
	TokenHash   string     `db:"token_hash"`
	Status      string     `db:"status"`
	ExpiresAt   time.Time  `db:"expires_at"`
	RespondedAt *time.Time `db:"responded_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (i *Invite) IsPending() bool {
	return i.Status == StatusPending
}

// IsExpired is evaluated lazily at response time; nothing sweeps
// expired invites.
func (i *Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// AddressedTo reports whether the invite was sent to email.
func (i *Invite) AddressedTo(email string) bool {
	return i.Email != nil && email != "" && strings.EqualFold(*i.Email, email)
}
