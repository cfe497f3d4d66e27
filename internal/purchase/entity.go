// AngelaMos | 2026
// entity.go

package purchase

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// soldMessage is recorded on the other pending offers when a bead sells.
const soldMessage = "bead was sold to another buyer"

type Request struct {
	ID              string          `db:"id"`
	ThreadID        string          `db:"thread_id"`
	BeadID          string          `db:"bead_id"`
	BuyerID         string          `db:"buyer_id"`
	OfferPrice      decimal.Decimal `db:"offer_price"`
	Message         string          `db:"message"`
	Status          string          `db:"status"`
	ResponseMessage string          `db:"response_message"`
	RespondedAt     *time.Time      `db:"responded_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

type View struct {
	Request
	BeadName   string `db:"bead_name"`
	BuyerName  string `db:"buyer_name"`
	BuyerEmail string `db:"buyer_email"`
}
