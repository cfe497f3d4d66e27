// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Counts struct {
	Users                   int `db:"users"                     json:"users"`
	Threads                 int `db:"threads"                   json:"threads"`
	Beads                   int `db:"beads"                     json:"beads"`
	Posts                   int `db:"posts"                     json:"posts"`
	PendingInvites          int `db:"pending_invites"           json:"pending_invites"`
	PendingMembership       int `db:"pending_membership"        json:"pending_membership_requests"`
	PendingPurchaseRequests int `db:"pending_purchase_requests" json:"pending_purchase_requests"`
}

type Counter interface {
	Counts(ctx context.Context) (*Counts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Counter {
	return &repository{db: db}
}

func (r *repository) Counts(ctx context.Context) (*Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL)              AS users,
			(SELECT COUNT(*) FROM threads WHERE deleted_at IS NULL)            AS threads,
			(SELECT COUNT(*) FROM beads WHERE deleted_at IS NULL)              AS beads,
			(SELECT COUNT(*) FROM feed_posts)                                  AS posts,
			(SELECT COUNT(*) FROM thread_invites WHERE status = 'pending')     AS pending_invites,
			(SELECT COUNT(*) FROM membership_requests WHERE status = 'pending') AS pending_membership,
			(SELECT COUNT(*) FROM bead_purchase_requests WHERE status = 'pending')
			                                                                   AS pending_purchase_requests`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	return &c, nil
}
