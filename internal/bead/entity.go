// AngelaMos | 2026
// entity.go

package bead

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const MaxImages = 5

type Bead struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	BeadType         string          `db:"bead_type"`
	Material         string          `db:"material"`
	Color            string          `db:"color"`
	Size             string          `db:"size"`
	Shape            string          `db:"shape"`
	Weight           string          `db:"weight"`
	Finish           string          `db:"finish"`
	Quantity         int             `db:"quantity"`
	PricePerUnit     decimal.Decimal `db:"price_per_unit"`
	Supplier         string          `db:"supplier"`
	ProductCode      string          `db:"product_code"`
	Description      string          `db:"description"`
	OwnerID          string          `db:"owner_id"`
	ThreadID         *string         `db:"thread_id"`
	OwnershipHistory pq.StringArray  `db:"ownership_history"`
	Images           pq.StringArray  `db:"images"`
	QRCode           string          `db:"qr_code"`
	Link             string          `db:"link"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	DeletedAt        *time.Time      `db:"deleted_at"`
}

func (b *Bead) IsOwner(userID string) bool {
	return b.OwnerID == userID
}

// InThread reports whether the bead belongs to threadID.
func (b *Bead) InThread(threadID string) bool {
	return b.ThreadID != nil && *b.ThreadID == threadID
}

func (b *Bead) Thumbnail() string {
	if len(b.Images) == 0 {
		return ""
	}
	return b.Images[0]
}

// Summary is a bead row joined with owner and thread names.
type Summary struct {
	Bead
	OwnerName  string `db:"owner_name"`
	ThreadName string `db:"thread_name"`
}
