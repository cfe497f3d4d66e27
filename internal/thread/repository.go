// AngelaMos | 2026
// repository.go

package thread

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Thread, memberIDs []string) error
	GetByID(ctx context.Context, id string) (*Thread, error)
	List(ctx context.Context, params core.PageParams) ([]Summary, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Summary, error)
	ListByMember(ctx context.Context, memberID string) ([]Summary, error)
	Update(ctx context.Context, t *Thread) error
	SoftDelete(ctx context.Context, id string) error
	Owner(ctx context.Context, ownerID string) (*Member, error)
	Members(ctx context.Context, threadID string) ([]Member, error)
	MemberIDs(ctx context.Context, threadID string) ([]string, error)
	Beads(ctx context.Context, threadID string) ([]BeadRef, error)
	AddMembers(ctx context.Context, threadID string, userIDs []string) (int64, error)
	RemoveMembers(ctx context.Context, threadID string, userIDs []string) error
	IsMember(ctx context.Context, threadID, userID string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const threadColumns = `t.id, t.name, t.description, t.owner_id, t.visibility, t.avatar,
		       t.qr_code, t.link, t.created_at, t.updated_at, t.deleted_at`

const summarySelect = `SELECT ` + threadColumns + `,
		       COALESCE(u.full_name, '') AS owner_name,
		       (SELECT COUNT(*) FROM thread_members m WHERE m.thread_id = t.id) AS member_count,
		       (SELECT COUNT(*) FROM beads b
		         WHERE b.thread_id = t.id AND b.deleted_at IS NULL) AS bead_count
		FROM threads t
		LEFT JOIN users u ON u.id = t.owner_id`

// InsertMembers adds userIDs to the thread, skipping existing members.
// It reports how many rows were actually inserted and runs on any
// DBTX so workflows can call it inside their own transaction.
func InsertMembers(
	ctx context.Context,
	db core.DBTX,
	threadID string,
	userIDs []string,
) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO thread_members (thread_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (thread_id, user_id) DO NOTHING`

	result, err := db.ExecContext(ctx, query, threadID, pq.StringArray(userIDs))
	if err != nil {
		return 0, core.ClassifyError("insert members", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert members: %w", err)
	}

	return n, nil
}

func (r *repository) Create(
	ctx context.Context,
	t *Thread,
	memberIDs []string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO threads (id, name, description, owner_id, visibility,
			                     avatar, qr_code, link)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			t.ID,
			t.Name,
			t.Description,
			t.OwnerID,
			t.Visibility,
			t.Avatar,
			t.QRCode,
			t.Link,
		).Scan(&t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return core.ClassifyError("create thread", err)
		}

		_, err = InsertMembers(ctx, tx, t.ID, memberIDs)
		return err
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Thread, error) {
	query := `SELECT ` + threadColumns + `
		FROM threads t
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	var t Thread
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, core.ClassifyError("get thread", err)
	}

	return &t, nil
}

func (r *repository) List(
	ctx context.Context,
	params core.PageParams,
) ([]Summary, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM threads WHERE deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count threads: %w", err)
	}

	query := summarySelect + `
		WHERE t.deleted_at IS NULL
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2`

	var rows []Summary
	if err := r.db.SelectContext(ctx, &rows, query, params.PageSize, params.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list threads: %w", err)
	}

	return rows, total, nil
}

func (r *repository) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]Summary, error) {
	query := summarySelect + `
		WHERE t.deleted_at IS NULL AND t.owner_id = $1
		ORDER BY t.created_at DESC`

	var rows []Summary
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list threads by owner: %w", err)
	}

	return rows, nil
}

func (r *repository) ListByMember(
	ctx context.Context,
	memberID string,
) ([]Summary, error) {
	query := summarySelect + `
		JOIN thread_members tm ON tm.thread_id = t.id
		WHERE t.deleted_at IS NULL AND tm.user_id = $1
		ORDER BY tm.added_at DESC`

	var rows []Summary
	if err := r.db.SelectContext(ctx, &rows, query, memberID); err != nil {
		return nil, fmt.Errorf("list threads by member: %w", err)
	}

	return rows, nil
}

func (r *repository) Update(ctx context.Context, t *Thread) error {
	query := `
		UPDATE threads
		SET name = $2, description = $3, visibility = $4, avatar = $5,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query,
		t.ID,
		t.Name,
		t.Description,
		t.Visibility,
		t.Avatar,
	)
	return core.ClassifyError("update thread", err)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE threads
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	return core.RequireAffected("delete thread", result)
}

func (r *repository) Owner(ctx context.Context, ownerID string) (*Member, error) {
	query := `
		SELECT id AS user_id, full_name, avatar, created_at AS added_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var m Member
	if err := r.db.GetContext(ctx, &m, query, ownerID); err != nil {
		return nil, core.ClassifyError("get thread owner", err)
	}

	return &m, nil
}

func (r *repository) Members(
	ctx context.Context,
	threadID string,
) ([]Member, error) {
	query := `
		SELECT tm.user_id, u.full_name, u.avatar, tm.added_at
		FROM thread_members tm
		JOIN users u ON u.id = tm.user_id AND u.deleted_at IS NULL
		WHERE tm.thread_id = $1
		ORDER BY tm.added_at, tm.user_id`

	var members []Member
	if err := r.db.SelectContext(ctx, &members, query, threadID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *repository) MemberIDs(
	ctx context.Context,
	threadID string,
) ([]string, error) {
	query := `SELECT user_id FROM thread_members WHERE thread_id = $1`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, threadID); err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}

	return ids, nil
}

func (r *repository) Beads(
	ctx context.Context,
	threadID string,
) ([]BeadRef, error) {
	query := `
		SELECT id, name, owner_id, images
		FROM beads
		WHERE thread_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	var beads []BeadRef
	if err := r.db.SelectContext(ctx, &beads, query, threadID); err != nil {
		return nil, fmt.Errorf("list thread beads: %w", err)
	}

	return beads, nil
}

func (r *repository) AddMembers(
	ctx context.Context,
	threadID string,
	userIDs []string,
) (int64, error) {
	return InsertMembers(ctx, r.db, threadID, userIDs)
}

func (r *repository) RemoveMembers(
	ctx context.Context,
	threadID string,
	userIDs []string,
) error {
	query := `
		DELETE FROM thread_members
		WHERE thread_id = $1 AND user_id = ANY($2::uuid[])`

	if _, err := r.db.ExecContext(ctx, query, threadID, pq.StringArray(userIDs)); err != nil {
		return fmt.Errorf("remove members: %w", err)
	}

	return nil
}

func (r *repository) IsMember(
	ctx context.Context,
	threadID, userID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM thread_members WHERE thread_id = $1 AND user_id = $2
		)`

	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, threadID, userID); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}

	return ok, nil
}
