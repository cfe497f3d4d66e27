// AngelaMos | 2026
// repository.go

package feed

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Repository interface {
	CreatePost(ctx context.Context, p *Post) error
	ListPosts(ctx context.Context, skip, limit int) ([]PostView, error)
	GetPost(ctx context.Context, id string) (*PostView, error)
	DeletePost(ctx context.Context, id string) error

	DeleteLike(ctx context.Context, postID, userID string) (bool, error)
	InsertLike(ctx context.Context, like *Like) error
	ListLikes(ctx context.Context, postID string) ([]Like, error)

	InsertComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, id string) (*Comment, error)
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	UpdateComment(ctx context.Context, c *Comment) error
	DeleteComment(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const postViewSelect = `
		SELECT p.id, p.type, p.bead_id, p.bead_name, p.bead_image, p.user_id,
		       p.content, p.location, p.created_at,
		       COALESCE(u.full_name, '') AS author_name,
		       COALESCE(u.avatar, '') AS author_avatar,
		       (SELECT COUNT(*) FROM feed_likes l WHERE l.post_id = p.id) AS like_count,
		       (SELECT COUNT(*) FROM feed_comments c WHERE c.post_id = p.id) AS comment_count
		FROM feed_posts p
		LEFT JOIN users u ON u.id = p.user_id`

func (r *repository) CreatePost(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO feed_posts (id, type, bead_id, bead_name, bead_image,
		                        user_id, content, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &p.CreatedAt, query,
		p.ID,
		p.Type,
		p.BeadID,
		p.BeadName,
		p.BeadImage,
		p.UserID,
		p.Content,
		p.Location,
	)
	return core.ClassifyError("create post", err)
}

func (r *repository) ListPosts(
	ctx context.Context,
	skip, limit int,
) ([]PostView, error) {
	query := postViewSelect + `
		ORDER BY p.created_at DESC, p.id
		LIMIT $1 OFFSET $2`

	var posts []PostView
	if err := r.db.SelectContext(ctx, &posts, query, limit, skip); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

func (r *repository) GetPost(ctx context.Context, id string) (*PostView, error) {
	query := postViewSelect + ` WHERE p.id = $1`

	var post PostView
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, core.ClassifyError("get post", err)
	}

	return &post, nil
}

func (r *repository) DeletePost(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feed_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return core.RequireAffected("delete post", result)
}

func (r *repository) DeleteLike(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM feed_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return n > 0, nil
}

func (r *repository) InsertLike(ctx context.Context, like *Like) error {
	query := `
		INSERT INTO feed_likes (id, post_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &like.CreatedAt, query, like.ID, like.PostID, like.UserID)
	return core.ClassifyError("insert like", err)
}

func (r *repository) ListLikes(ctx context.Context, postID string) ([]Like, error) {
	query := `
		SELECT l.id, l.post_id, l.user_id, COALESCE(u.full_name, '') AS full_name,
		       l.created_at
		FROM feed_likes l
		LEFT JOIN users u ON u.id = l.user_id
		WHERE l.post_id = $1
		ORDER BY l.created_at DESC`

	var likes []Like
	if err := r.db.SelectContext(ctx, &likes, query, postID); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	return likes, nil
}

func (r *repository) InsertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO feed_comments (id, post_id, user_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, c.ID, c.PostID, c.UserID, c.Text).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	return core.ClassifyError("insert comment", err)
}

const commentSelect = `
		SELECT c.id, c.post_id, c.user_id, COALESCE(u.full_name, '') AS author_name,
		       c.text, c.created_at, c.updated_at
		FROM feed_comments c
		LEFT JOIN users u ON u.id = c.user_id`

func (r *repository) GetComment(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	if err := r.db.GetContext(ctx, &c, commentSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, core.ClassifyError("get comment", err)
	}

	return &c, nil
}

func (r *repository) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	query := commentSelect + `
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

func (r *repository) UpdateComment(ctx context.Context, c *Comment) error {
	query := `
		UPDATE feed_comments
		SET text = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query, c.ID, c.Text)
	return core.ClassifyError("update comment", err)
}

func (r *repository) DeleteComment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feed_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return core.RequireAffected("delete comment", result)
}
