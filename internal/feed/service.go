// AngelaMos | 2026
// service.go

package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreatePost(
	ctx context.Context,
	userID string,
	req CreatePostRequest,
) (*PostView, error) {
	if err := core.ValidateIDs(userID); err != nil {
		return nil, err
	}
	if len(req.Content) == 0 {
		return nil, core.InvalidRequest("post content is required")
	}

	p := &Post{
		ID:       core.NewID(),
		Type:     TypePost,
		UserID:   userID,
		Content:  Blocks(req.Content),
		Location: req.Location,
	}

	if err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, err
	}

	return &PostView{Post: *p}, nil
}

// ListPosts returns posts newest first. limit is clamped to [1, 100].
func (s *Service) ListPosts(ctx context.Context, skip, limit int) ([]PostView, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.ListPosts(ctx, skip, limit)
}

func (s *Service) GetPost(ctx context.Context, id string) (*PostView, error) {
	if err := core.ValidateIDs(id); err != nil {
		return nil, err
	}
	return s.repo.GetPost(ctx, id)
}

// DeletePost removes a post. Only its author or an admin may do so.
func (s *Service) DeletePost(ctx context.Context, id, userID string, isAdmin bool) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && post.UserID != userID {
		return core.ForbiddenError("only the author can delete this post")
	}
	return s.repo.DeletePost(ctx, id)
}

func (s *Service) EmitBeadCreated(ctx context.Context, ev BeadEvent) error {
	content := Blocks{{Type: BlockText, Content: ev.Description}}
	if ev.Image != "" {
		content = append(content, Block{Type: BlockImage, Content: ev.Image})
	}
	return s.emit(ctx, TypeBeadCreated, ev, content)
}

func (s *Service) EmitOwnershipTransfer(ctx context.Context, ev BeadEvent) error {
	content := Blocks{{Type: BlockText, Content: ev.BeadName + " has a new owner"}}
	return s.emit(ctx, TypeOwnershipTransfer, ev, content)
}

func (s *Service) emit(ctx context.Context, postType string, ev BeadEvent, content Blocks) error {
	beadID := ev.BeadID
	loc := UnknownLocation

	p := &Post{
		ID:        core.NewID(),
		Type:      postType,
		BeadID:    &beadID,
		BeadName:  ev.BeadName,
		BeadImage: ev.Image,
		UserID:    ev.UserID,
		Content:   content,
		Location:  &loc,
	}

	if err := s.repo.CreatePost(ctx, p); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "feed post emitted", "type", postType, "bead_id", ev.BeadID)
	return nil
}

// ToggleLike removes the caller's like if present, otherwise adds one.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (*LikeResult, error) {
	if err := core.ValidateIDs(postID, userID); err != nil {
		return nil, err
	}

	removed, err := s.repo.DeleteLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if removed {
		return &LikeResult{Liked: false}, nil
	}

	err = s.repo.InsertLike(ctx, &Like{ID: core.NewID(), PostID: postID, UserID: userID})
	switch {
	case err == nil, errors.Is(err, core.ErrDuplicateKey):
		return &LikeResult{Liked: true}, nil
	case errors.Is(err, core.ErrNotFound):
		return nil, core.InvalidRequest("post does not exist")
	default:
		return nil, err
	}
}

func (s *Service) ListLikes(ctx context.Context, postID string) ([]Like, error) {
	if err := core.ValidateIDs(postID); err != nil {
		return nil, err
	}
	return s.repo.ListLikes(ctx, postID)
}

func (s *Service) AddComment(ctx context.Context, postID, userID, text string) (*Comment, error) {
	if err := core.ValidateIDs(postID, userID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.InvalidRequest("comment text cannot be empty")
	}

	c := &Comment{ID: core.NewID(), PostID: postID, UserID: userID, Text: text}
	if err := s.repo.InsertComment(ctx, c); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.InvalidRequest("post does not exist")
		}
		return nil, err
	}

	return c, nil
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if err := core.ValidateIDs(postID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, postID)
}

func (s *Service) UpdateComment(ctx context.Context, id, userID, text string) (*Comment, error) {
	c, err := s.ownComment(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.InvalidRequest("comment text cannot be empty")
	}

	c.Text = text
	if err := s.repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, id, userID string) error {
	if _, err := s.ownComment(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.DeleteComment(ctx, id)
}

func (s *Service) ownComment(ctx context.Context, id, userID string) (*Comment, error) {
	if err := core.ValidateIDs(id); err != nil {
		return nil, err
	}

	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.UserID != userID {
		return nil, core.ForbiddenError("only the author can change this comment")
	}

	return c, nil
}
