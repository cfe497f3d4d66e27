// AngelaMos | 2026
// service.go

package thread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/qrcode"
)

type Service struct {
	repo   Repository
	qr     qrcode.Generator
	logger *slog.Logger
}

func NewService(repo Repository, qr qrcode.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, qr: qr, logger: logger}
}

// CreateThread generates the QR asset before anything is written, so a
// generator failure leaves no thread behind.
func (s *Service) CreateThread(
	ctx context.Context,
	ownerID string,
	req CreateThreadRequest,
) (*Thread, error) {
	if ownerID == "" {
		return nil, core.InvalidRequest("thread owner is required")
	}
	if err := core.ValidateIDs(ownerID); err != nil {
		return nil, err
	}

	memberIDs, err := core.CanonicalIDs(req.MemberIDs)
	if err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	t := &Thread{
		ID:          core.NewID(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     ownerID,
		Visibility:  visibility,
	}
	if t.Name == "" {
		return nil, core.InvalidRequest("thread name is required")
	}

	asset, err := s.qr.Generate(ctx, qrcode.KindThread, t.ID)
	if err != nil {
		return nil, core.InternalError("QR code generation failed", err)
	}
	t.QRCode = asset.Path
	t.Link = asset.Link

	if err := s.repo.Create(ctx, t, memberIDs); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("member")
		}
		return nil, err
	}

	return t, nil
}

func (s *Service) GetThread(ctx context.Context, id string) (*Detail, error) {
	if err := core.ValidateIDs(id); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, t)
}

func (s *Service) detail(ctx context.Context, t *Thread) (*Detail, error) {
	d := &Detail{Thread: *t}

	owner, err := s.repo.Owner(ctx, t.OwnerID)
	switch {
	case err == nil:
		d.Owner = owner
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	if d.Members, err = s.repo.Members(ctx, t.ID); err != nil {
		return nil, err
	}

	if d.Beads, err = s.repo.Beads(ctx, t.ID); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) ListThreads(
	ctx context.Context,
	params core.PageParams,
) ([]Summary, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Summary, error) {
	if !core.IsValidID(ownerID) {
		return nil, core.InvalidRequest("invalid owner ID")
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Summary, error) {
	if !core.IsValidID(memberID) {
		return nil, core.InvalidRequest("invalid member ID")
	}
	return s.repo.ListByMember(ctx, memberID)
}

func (s *Service) UpdateThread(
	ctx context.Context,
	id string,
	req UpdateThreadRequest,
) (*Thread, error) {
	if err := core.ValidateIDs(id); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(t)
	if strings.TrimSpace(t.Name) == "" {
		return nil, core.InvalidRequest("thread name cannot be blank")
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) DeleteThread(ctx context.Context, id string) error {
	if err := core.ValidateIDs(id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// AddMembers inserts the requested users that are not members yet. It
// fails when every requested user already belongs to the thread.
func (s *Service) AddMembers(
	ctx context.Context,
	threadID string,
	memberIDs []string,
) (*Detail, error) {
	t, ids, err := s.prepareMembers(ctx, threadID, memberIDs)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.MemberIDs(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	missing := NewMemberSet(current).Missing(ids)
	if len(missing) == 0 {
		return nil, core.InvalidRequest("all users are already members of this thread")
	}

	if _, err := s.repo.AddMembers(ctx, t.ID, missing); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "members added",
		"thread_id", t.ID,
		"count", len(missing),
	)

	return s.detail(ctx, t)
}

// RemoveMembers is idempotent: ids that are not members are ignored.
func (s *Service) RemoveMembers(
	ctx context.Context,
	threadID string,
	memberIDs []string,
) (*Detail, error) {
	t, ids, err := s.prepareMembers(ctx, threadID, memberIDs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveMembers(ctx, t.ID, ids); err != nil {
		return nil, err
	}

	return s.detail(ctx, t)
}

func (s *Service) prepareMembers(
	ctx context.Context,
	threadID string,
	memberIDs []string,
) (*Thread, []string, error) {
	if err := core.ValidateIDs(threadID); err != nil {
		return nil, nil, err
	}

	ids, err := core.CanonicalIDs(memberIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, core.InvalidRequest("at least one member id is required")
	}

	t, err := s.repo.GetByID(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}

	return t, ids, nil
}

// AddMemberToThread is the scan-to-join path: a single idempotent add.
func (s *Service) AddMemberToThread(
	ctx context.Context,
	threadID, userID string,
) (*JoinResult, error) {
	if err := core.ValidateIDs(threadID, userID); err != nil {
		return nil, err
	}

	canonical, err := core.CanonicalID(userID)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.AddMembers(ctx, t.ID, []string{canonical})
	if err != nil {
		return nil, err
	}

	return &JoinResult{
		ThreadID:      t.ID,
		UserID:        canonical,
		AlreadyMember: added == 0,
	}, nil
}

// RequireOwner loads the thread and fails with Forbidden unless userID
// owns it.
func (s *Service) RequireOwner(
	ctx context.Context,
	threadID, userID string,
) (*Thread, error) {
	if err := core.ValidateIDs(threadID); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if !t.IsOwner(userID) {
		return nil, core.ForbiddenError("only the thread owner can do this")
	}

	return t, nil
}

func (s *Service) IsMember(ctx context.Context, threadID, userID string) (bool, error) {
	canonical, err := core.CanonicalID(userID)
	if err != nil {
		return false, err
	}

	ok, err := s.repo.IsMember(ctx, threadID, canonical)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return ok, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Thread, error) {
	if err := core.ValidateIDs(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
