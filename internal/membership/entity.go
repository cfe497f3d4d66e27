// AngelaMos | 2026
// entity.go

package membership

import (
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Request struct {
	ID              string     `db:"id"`
	ThreadID        string     `db:"thread_id"`
	RequesterID     string     `db:"requester_id"`
	Message         string     `db:"message"`
	Status          string     `db:"status"`
	ResponderID     *string    `db:"responder_id"`
	ResponseMessage string     `db:"response_message"`
	RespondedAt     *time.Time `db:"responded_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// View is a request joined with the names an owner needs to decide on it.
type View struct {
	Request
	ThreadName     string `db:"thread_name"`
	RequesterName  string `db:"requester_name"`
	RequesterEmail string `db:"requester_email"`
}
