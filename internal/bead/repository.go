// AngelaMos | 2026
// repository.go

package bead

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, b *Bead) error
	GetByID(ctx context.Context, id string) (*Bead, error)
	List(ctx context.Context, params core.PageParams) ([]Summary, int, error)
	ListByThread(ctx context.Context, threadID string) ([]Summary, error)
	Update(ctx context.Context, b *Bead) error
	AppendImages(ctx context.Context, id string, urls []string) (*Bead, error)
	SoftDelete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const beadColumns = `b.id, b.name, b.bead_type, b.material, b.color, b.size, b.shape,
		       b.weight, b.finish, b.quantity, b.price_per_unit, b.supplier,
		       b.product_code, b.description, b.owner_id, b.thread_id,
		       b.ownership_history, b.images, b.qr_code, b.link,
		       b.created_at, b.updated_at, b.deleted_at`

const summarySelect = `SELECT ` + beadColumns + `,
		       COALESCE(u.full_name, '') AS owner_name,
		       COALESCE(t.name, '') AS thread_name
		FROM beads b
		LEFT JOIN users u ON u.id = b.owner_id
		LEFT JOIN threads t ON t.id = b.thread_id AND t.deleted_at IS NULL`

// TransferOwnership reassigns the bead to newOwnerID and appends the
// previous owner to its history in one statement. The row is locked for
// the duration of the caller's transaction.
func TransferOwnership(
	ctx context.Context,
	db core.DBTX,
	beadID, newOwnerID string,
) (string, error) {
	query := `
		WITH prev AS (
			SELECT owner_id FROM beads
			WHERE id = $1 AND deleted_at IS NULL
			FOR UPDATE
		)
		UPDATE beads b
		SET owner_id = $2,
		    ownership_history = array_append(b.ownership_history, prev.owner_id::text),
		    updated_at = NOW()
		FROM prev
		WHERE b.id = $1
		RETURNING prev.owner_id`

	var previous string
	if err := db.GetContext(ctx, &previous, query, beadID, newOwnerID); err != nil {
		return "", core.ClassifyError("transfer bead ownership", err)
	}

	return previous, nil
}

func (r *repository) Create(ctx context.Context, b *Bead) error {
	query := `
		INSERT INTO beads (id, name, bead_type, material, color, size, shape,
		                   weight, finish, quantity, price_per_unit, supplier,
		                   product_code, description, owner_id, thread_id,
		                   ownership_history, images, qr_code, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		b.ID,
		b.Name,
		b.BeadType,
		b.Material,
		b.Color,
		b.Size,
		b.Shape,
		b.Weight,
		b.Finish,
		b.Quantity,
		b.PricePerUnit,
		b.Supplier,
		b.ProductCode,
		b.Description,
		b.OwnerID,
		b.ThreadID,
		b.OwnershipHistory,
		b.Images,
		b.QRCode,
		b.Link,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return core.ClassifyError("create bead", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Bead, error) {
	query := `SELECT ` + beadColumns + `
		FROM beads b
		WHERE b.id = $1 AND b.deleted_at IS NULL`

	var b Bead
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		return nil, core.ClassifyError("get bead", err)
	}

	return &b, nil
}

func (r *repository) List(
	ctx context.Context,
	params core.PageParams,
) ([]Summary, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM beads WHERE deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count beads: %w", err)
	}

	query := summarySelect + `
		WHERE b.deleted_at IS NULL
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`

	var rows []Summary
	if err := r.db.SelectContext(ctx, &rows, query, params.PageSize, params.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list beads: %w", err)
	}

	return rows, total, nil
}

func (r *repository) ListByThread(
	ctx context.Context,
	threadID string,
) ([]Summary, error) {
	query := summarySelect + `
		WHERE b.deleted_at IS NULL AND b.thread_id = $1
		ORDER BY b.created_at DESC`

	var rows []Summary
	if err := r.db.SelectContext(ctx, &rows, query, threadID); err != nil {
		return nil, fmt.Errorf("list beads by thread: %w", err)
	}

	return rows, nil
}

func (r *repository) Update(ctx context.Context, b *Bead) error {
	query := `
		UPDATE beads
		SET name = $2, bead_type = $3, material = $4, color = $5, size = $6,
		    shape = $7, weight = $8, finish = $9, quantity = $10,
		    price_per_unit = $11, supplier = $12, product_code = $13,
		    description = $14, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &b.UpdatedAt, query,
		b.ID,
		b.Name,
		b.BeadType,
		b.Material,
		b.Color,
		b.Size,
		b.Shape,
		b.Weight,
		b.Finish,
		b.Quantity,
		b.PricePerUnit,
		b.Supplier,
		b.ProductCode,
		b.Description,
	)
	return core.ClassifyError("update bead", err)
}

// AppendImages relies on the images cardinality check, so a concurrent
// append that would pass the limit fails as a check violation.
func (r *repository) AppendImages(
	ctx context.Context,
	id string,
	urls []string,
) (*Bead, error) {
	query := `
		UPDATE beads b
		SET images = b.images || $2::text[], updated_at = NOW()
		WHERE b.id = $1 AND b.deleted_at IS NULL
		RETURNING ` + beadColumns

	var b Bead
	if err := r.db.GetContext(ctx, &b, query, id, pq.StringArray(urls)); err != nil {
		return nil, core.ClassifyError("append bead images", err)
	}

	return &b, nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE beads
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete bead: %w", err)
	}

	return core.RequireAffected("delete bead", result)
}
