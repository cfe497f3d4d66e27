// AngelaMos | 2026
// repository.go

package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/kandi-backend/internal/bead"
	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	ListByBead(ctx context.Context, beadID string) ([]View, error)
	ListByThread(ctx context.Context, threadID string) ([]View, error)
	ListByBuyerEmail(ctx context.Context, email string) ([]View, error)
	// Accept settles the request, hands the bead to the buyer and rejects
	// the bead's other pending offers, all in one transaction. It returns
	// the previous owner. core.ErrConflict means the request was no
	// longer pending.
	Accept(ctx context.Context, req *Request) (previousOwner string, err error)
	Reject(ctx context.Context, req *Request) error
	Cancel(ctx context.Context, req *Request) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const requestColumns = `id, thread_id, bead_id, buyer_id, offer_price, message, status,
		       response_message, responded_at, created_at, updated_at`

const viewSelect = `
		SELECT pr.id, pr.thread_id, pr.bead_id, pr.buyer_id, pr.offer_price,
		       pr.message, pr.status, pr.response_message, pr.responded_at,
		       pr.created_at, pr.updated_at,
		       COALESCE(b.name, '') AS bead_name,
		       COALESCE(u.full_name, '') AS buyer_name,
		       COALESCE(u.email, '') AS buyer_email
		FROM bead_purchase_requests pr
		LEFT JOIN beads b ON b.id = pr.bead_id
		LEFT JOIN users u ON u.id = pr.buyer_id`

func (r *repository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO bead_purchase_requests (id, thread_id, bead_id, buyer_id,
		                                    offer_price, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID,
		req.ThreadID,
		req.BeadID,
		req.BuyerID,
		req.OfferPrice,
		req.Message,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	return core.ClassifyError("create purchase request", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM bead_purchase_requests WHERE id = $1`

	var req Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, core.ClassifyError("get purchase request", err)
	}

	return &req, nil
}

func (r *repository) ListByBead(ctx context.Context, beadID string) ([]View, error) {
	return r.list(ctx, "list purchase requests by bead",
		viewSelect+` WHERE pr.bead_id = $1 ORDER BY pr.created_at DESC`, beadID)
}

func (r *repository) ListByThread(ctx context.Context, threadID string) ([]View, error) {
	return r.list(ctx, "list purchase requests by thread",
		viewSelect+` WHERE pr.thread_id = $1 ORDER BY pr.created_at DESC`, threadID)
}

func (r *repository) ListByBuyerEmail(ctx context.Context, email string) ([]View, error) {
	return r.list(ctx, "list purchase requests by buyer",
		viewSelect+` WHERE lower(u.email) = lower($1) ORDER BY pr.created_at DESC`, email)
}

func (r *repository) list(ctx context.Context, op, query string, arg any) ([]View, error) {
	var views []View
	if err := r.db.SelectContext(ctx, &views, query, arg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

func (r *repository) Accept(ctx context.Context, req *Request) (string, error) {
	var previous string

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// The bead row is locked before any request row.
		lock := `SELECT owner_id FROM beads WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
		var owner string
		if err := tx.GetContext(ctx, &owner, lock, req.BeadID); err != nil {
			return core.ClassifyError("lock bead", err)
		}

		if err := settle(ctx, tx, req, StatusAccepted); err != nil {
			return err
		}

		prev, err := bead.TransferOwnership(ctx, tx, req.BeadID, req.BuyerID)
		if err != nil {
			return err
		}
		previous = prev

		siblings := `
			UPDATE bead_purchase_requests
			SET status = 'rejected', response_message = $3,
			    responded_at = NOW(), updated_at = NOW()
			WHERE bead_id = $1 AND id <> $2 AND status = 'pending'`

		if _, err := tx.ExecContext(ctx, siblings, req.BeadID, req.ID, soldMessage); err != nil {
			return fmt.Errorf("reject other offers: %w", err)
		}

		return nil
	})

	return previous, err
}

func (r *repository) Reject(ctx context.Context, req *Request) error {
	return settle(ctx, r.db, req, StatusRejected)
}

func (r *repository) Cancel(ctx context.Context, req *Request) error {
	return settle(ctx, r.db, req, StatusCancelled)
}

// settle is a compare-and-set on status = 'pending'.
func settle(ctx context.Context, db core.DBTX, req *Request, status string) error {
	query := `
		UPDATE bead_purchase_requests
		SET status = $2, response_message = $3,
		    responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + requestColumns

	err := db.GetContext(ctx, req, query, req.ID, status, req.ResponseMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("settle purchase request: %w", core.ErrConflict)
	}
	return core.ClassifyError("settle purchase request", err)
}
