// AngelaMos | 2026
// service.go

package bead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/feed"
	"github.com/carterperez-dev/kandi-backend/internal/qrcode"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
)

// ThreadLookup resolves the thread a bead is created in.
type ThreadLookup interface {
	Get(ctx context.Context, id string) (*thread.Thread, error)
}

// FeedEmitter publishes the activity post for a new bead.
type FeedEmitter interface {
	EmitBeadCreated(ctx context.Context, ev feed.BeadEvent) error
}

type Service struct {
	repo    Repository
	threads ThreadLookup
	qr      qrcode.Generator
	feed    FeedEmitter
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	threads ThreadLookup,
	qr qrcode.Generator,
	emitter FeedEmitter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		threads: threads,
		qr:      qr,
		feed:    emitter,
		logger:  logger,
	}
}

func (s *Service) CreateBead(
	ctx context.Context,
	ownerID string,
	req CreateBeadRequest,
) (created *Bead, err error) {
	ctx, finish := core.StartWorkflow(ctx, "bead_create",
		attribute.String("bead.owner_id", ownerID),
		attribute.String("thread.id", req.ThreadID),
	)
	defer func() { finish(err) }()

	if err := core.ValidateIDs(ownerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, core.InvalidRequest("bead name is required")
	}
	if len(req.Images) > MaxImages {
		return nil, core.InvalidRequest(fmt.Sprintf("a bead can have at most %d images", MaxImages))
	}
	if req.PricePerUnit.IsNegative() {
		return nil, core.InvalidRequest("price per unit cannot be negative")
	}

	b := &Bead{
		ID:               core.NewID(),
		Name:             name,
		BeadType:         req.BeadType,
		Material:         req.Material,
		Color:            req.Color,
		Size:             req.Size,
		Shape:            req.Shape,
		Weight:           req.Weight,
		Finish:           req.Finish,
		Quantity:         req.Quantity,
		PricePerUnit:     req.PricePerUnit,
		Supplier:         req.Supplier,
		ProductCode:      req.ProductCode,
		Description:      req.Description,
		OwnerID:          ownerID,
		OwnershipHistory: []string{},
		Images:           append([]string{}, req.Images...),
	}

	if req.ThreadID != "" {
		threadID, err := core.CanonicalID(req.ThreadID)
		if err != nil {
			return nil, err
		}
		if _, err := s.threads.Get(ctx, threadID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, core.NotFoundError("thread")
			}
			return nil, err
		}
		b.ThreadID = &threadID
	}

	asset, err := s.qr.Generate(ctx, qrcode.KindBead, b.ID)
	if err != nil {
		return nil, core.InternalError("QR code generation failed", err)
	}
	b.QRCode = asset.Path
	b.Link = asset.Link

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bead created",
		"bead_id", b.ID,
		"owner_id", b.OwnerID,
	)

	if b.ThreadID != nil {
		s.announce(ctx, b)
	}

	return b, nil
}

// announce posts the bead to the feed. A failure is logged and counted
// but never fails the creation.
func (s *Service) announce(ctx context.Context, b *Bead) {
	if s.feed == nil {
		return
	}

	err := s.feed.EmitBeadCreated(ctx, feed.BeadEvent{
		BeadID:      b.ID,
		BeadName:    b.Name,
		Description: b.Description,
		Image:       b.Thumbnail(),
		UserID:      b.OwnerID,
	})
	if err != nil {
		core.ObserveSideEffectFailure("feed_bead_created")
		s.logger.WarnContext(ctx, "bead feed post failed",
			"bead_id", b.ID,
			"error", err,
		)
	}
}

func (s *Service) GetBead(ctx context.Context, id string) (*Bead, error) {
	if err := core.ValidateIDs(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBeads(
	ctx context.Context,
	params core.PageParams,
) ([]Summary, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) ListByThread(ctx context.Context, threadID string) ([]Summary, error) {
	if !core.IsValidID(threadID) {
		return nil, core.InvalidRequest("invalid thread ID")
	}
	return s.repo.ListByThread(ctx, threadID)
}

func (s *Service) UpdateBead(
	ctx context.Context,
	id string,
	req UpdateBeadRequest,
) (*Bead, error) {
	b, err := s.GetBead(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(b)
	if strings.TrimSpace(b.Name) == "" {
		return nil, core.InvalidRequest("bead name cannot be blank")
	}
	if b.PricePerUnit.IsNegative() {
		return nil, core.InvalidRequest("price per unit cannot be negative")
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) AddImages(ctx context.Context, id string, urls []string) (*Bead, error) {
	b, err := s.GetBead(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(urls) == 0 {
		return nil, core.InvalidRequest("no images provided")
	}
	if len(b.Images)+len(urls) > MaxImages {
		return nil, core.InvalidRequest(fmt.Sprintf("cannot upload more than %d images", MaxImages))
	}

	updated, err := s.repo.AppendImages(ctx, b.ID, urls)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return nil, core.InvalidRequest(fmt.Sprintf("cannot upload more than %d images", MaxImages))
		}
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeleteBead(ctx context.Context, id string) error {
	if err := core.ValidateIDs(id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// RequireOwner loads the bead and fails with Forbidden unless userID
// owns it.
func (s *Service) RequireOwner(ctx context.Context, id, userID string) (*Bead, error) {
	b, err := s.GetBead(ctx, id)
	if err != nil {
		return nil, err
	}

	if !b.IsOwner(userID) {
		return nil, core.ForbiddenError("only the bead owner can do this")
	}

	return b, nil
}
