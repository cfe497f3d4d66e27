// AngelaMos | 2026
// repository.go

package invite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
)

type Repository interface {
	Create(ctx context.Context, inv *Invite) error
	GetByID(ctx context.Context, id string) (*Invite, error)
	GetByTokenHash(ctx context.Context, hash string) (*Invite, error)
	ListPendingByEmail(ctx context.Context, email string) ([]Invite, error)
	// Accept moves a pending invite to accepted and, when memberID is
	// set, adds that user to the thread in the same transaction. It
	// returns core.ErrConflict if the invite was no longer pending.
	Accept(ctx context.Context, inv *Invite, memberID string) (added bool, err error)
	Decline(ctx context.Context, inv *Invite) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const inviteColumns = `id, thread_id, thread_name, email, user_id, inviter_id,
		       token_hash, status, expires_at, responded_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, inv *Invite) error {
	query := `
		INSERT INTO thread_invites (id, thread_id, thread_name, email, user_id,
		                            inviter_id, token_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		inv.ID,
		inv.ThreadID,
		inv.ThreadName,
		inv.Email,
		inv.UserID,
		inv.InviterID,
		inv.TokenHash,
		inv.Status,
		inv.ExpiresAt,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	return core.ClassifyError("create invite", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM thread_invites WHERE id = $1`

	var inv Invite
	if err := r.db.GetContext(ctx, &inv, query, id); err != nil {
		return nil, core.ClassifyError("get invite", err)
	}

	return &inv, nil
}

func (r *repository) GetByTokenHash(ctx context.Context, hash string) (*Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM thread_invites WHERE token_hash = $1`

	var inv Invite
	if err := r.db.GetContext(ctx, &inv, query, hash); err != nil {
		return nil, core.ClassifyError("get invite by token", err)
	}

	return &inv, nil
}

func (r *repository) ListPendingByEmail(
	ctx context.Context,
	email string,
) ([]Invite, error) {
	query := `SELECT ` + inviteColumns + `
		FROM thread_invites
		WHERE lower(email) = lower($1) AND status = 'pending'
		ORDER BY created_at DESC`

	var invites []Invite
	if err := r.db.SelectContext(ctx, &invites, query, email); err != nil {
		return nil, fmt.Errorf("list invites by email: %w", err)
	}

	return invites, nil
}

func (r *repository) Accept(
	ctx context.Context,
	inv *Invite,
	memberID string,
) (bool, error) {
	var added bool

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var member *string
		if memberID != "" {
			member = &memberID
		}

		if err := transition(ctx, tx, inv, StatusAccepted, member); err != nil {
			return err
		}

		if memberID == "" {
			return nil
		}

		n, err := thread.InsertMembers(ctx, tx, inv.ThreadID, []string{memberID})
		if err != nil {
			return err
		}
		added = n > 0
		return nil
	})

	return added, err
}

func (r *repository) Decline(ctx context.Context, inv *Invite) error {
	return transition(ctx, r.db, inv, StatusDeclined, nil)
}

// transition is a compare-and-set on status = 'pending'.
func transition(
	ctx context.Context,
	db core.DBTX,
	inv *Invite,
	status string,
	memberID *string,
) error {
	query := `
		UPDATE thread_invites
		SET status = $2, user_id = COALESCE(user_id, $3),
		    responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + inviteColumns

	err := db.GetContext(ctx, inv, query, inv.ID, status, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("respond to invite: %w", core.ErrConflict)
		}
		return core.ClassifyError("respond to invite", err)
	}

	return nil
}
