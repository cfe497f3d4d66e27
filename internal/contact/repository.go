// AngelaMos | 2026
// repository.go

package contact

import (
	"context"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO contacts (id, name, email, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &m.CreatedAt, query,
		m.ID,
		m.Name,
		m.Email,
		m.Message,
	)
	return core.ClassifyError("create contact", err)
}
