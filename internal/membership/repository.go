// AngelaMos | 2026
// repository.go

package membership

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
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	ListPendingByOwnerEmail(ctx context.Context, email string) ([]View, error)
	// Approve settles the request and adds the requester to the thread in
	// one transaction. core.ErrConflict means it was no longer pending.
	Approve(ctx context.Context, req *Request) (added bool, err error)
	Reject(ctx context.Context, req *Request) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const requestColumns = `id, thread_id, requester_id, message, status, responder_id,
		       response_message, responded_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO membership_requests (id, thread_id, requester_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID,
		req.ThreadID,
		req.RequesterID,
		req.Message,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	return core.ClassifyError("create membership request", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM membership_requests WHERE id = $1`

	var req Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, core.ClassifyError("get membership request", err)
	}

	return &req, nil
}

func (r *repository) ListPendingByOwnerEmail(
	ctx context.Context,
	email string,
) ([]View, error) {
	query := `
		SELECT mr.id, mr.thread_id, mr.requester_id, mr.message, mr.status,
		       mr.responder_id, mr.response_message, mr.responded_at,
		       mr.created_at, mr.updated_at,
		       t.name AS thread_name,
		       ru.full_name AS requester_name,
		       ru.email AS requester_email
		FROM membership_requests mr
		JOIN threads t ON t.id = mr.thread_id AND t.deleted_at IS NULL
		JOIN users owner ON owner.id = t.owner_id
		JOIN users ru ON ru.id = mr.requester_id
		WHERE lower(owner.email) = lower($1) AND mr.status = 'pending'
		ORDER BY mr.created_at DESC`

	var views []View
	if err := r.db.SelectContext(ctx, &views, query, email); err != nil {
		return nil, fmt.Errorf("list membership requests: %w", err)
	}

	return views, nil
}

func (r *repository) Approve(ctx context.Context, req *Request) (bool, error) {
	var added bool

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := settle(ctx, tx, req, StatusApproved); err != nil {
			return err
		}

		n, err := thread.InsertMembers(ctx, tx, req.ThreadID, []string{req.RequesterID})
		if err != nil {
			return err
		}
		added = n > 0
		return nil
	})

	return added, err
}

func (r *repository) Reject(ctx context.Context, req *Request) error {
	return settle(ctx, r.db, req, StatusRejected)
}

// settle writes the decision only while the request is still pending.
func settle(ctx context.Context, db core.DBTX, req *Request, status string) error {
	query := `
		UPDATE membership_requests
		SET status = $2, responder_id = $3, response_message = $4,
		    responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + requestColumns

	err := db.GetContext(ctx, req, query, req.ID, status, req.ResponderID, req.ResponseMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("settle membership request: %w", core.ErrConflict)
	}
	return core.ClassifyError("settle membership request", err)
}
