// AngelaMos | 2026
// service.go

package purchase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/kandi-backend/internal/bead"
	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/feed"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
	"github.com/carterperez-dev/kandi-backend/internal/user"
)

type ThreadAccess interface {
	Get(ctx context.Context, id string) (*thread.Thread, error)
	IsMember(ctx context.Context, threadID, userID string) (bool, error)
}

type BeadLookup interface {
	GetBead(ctx context.Context, id string) (*bead.Bead, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type FeedEmitter interface {
	EmitOwnershipTransfer(ctx context.Context, ev feed.BeadEvent) error
}

type Notifier interface {
	Notify(ctx context.Context, email notify.Email)
}

type Service struct {
	repo     Repository
	threads  ThreadAccess
	beads    BeadLookup
	users    UserLookup
	feed     FeedEmitter
	notifier Notifier
	logger   *slog.Logger
}

type Deps struct {
	Threads  ThreadAccess
	Beads    BeadLookup
	Users    UserLookup
	Feed     FeedEmitter
	Notifier Notifier
}

func NewService(repo Repository, deps Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		threads:  deps.Threads,
		beads:    deps.Beads,
		users:    deps.Users,
		feed:     deps.Feed,
		notifier: deps.Notifier,
		logger:   logger,
	}
}

type CreateInput struct {
	ThreadID   string
	BeadID     string
	BuyerID    string
	OfferPrice decimal.Decimal
	Message    string
}

// CreatePurchaseRequest records a buyer's offer. The bead must belong to
// the thread and the buyer must be a member of it.
func (s *Service) CreatePurchaseRequest(
	ctx context.Context,
	in CreateInput,
) (res *CreateResult, err error) {
	ctx, finish := core.StartWorkflow(ctx, "purchase_create",
		attribute.String("bead.id", in.BeadID),
	)
	defer func() { finish(err) }()

	if err := core.ValidateIDs(in.ThreadID, in.BeadID, in.BuyerID); err != nil {
		return nil, err
	}
	if !in.OfferPrice.IsPositive() {
		return nil, core.InvalidRequest("offer price must be greater than zero")
	}

	t, err := s.threads.Get(ctx, in.ThreadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("thread")
		}
		return nil, err
	}

	b, err := s.beads.GetBead(ctx, in.BeadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("bead")
		}
		return nil, err
	}

	if !b.InThread(t.ID) {
		return nil, core.NotFoundError("bead in thread")
	}

	buyerID, err := core.CanonicalID(in.BuyerID)
	if err != nil {
		return nil, err
	}

	if b.IsOwner(buyerID) {
		return nil, core.InvalidRequest("you already own this bead")
	}

	if !t.IsOwner(buyerID) {
		member, err := s.threads.IsMember(ctx, t.ID, buyerID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, core.ForbiddenError("only thread members can make offers")
		}
	}

	req := &Request{
		ID:         core.NewID(),
		ThreadID:   t.ID,
		BeadID:     b.ID,
		BuyerID:    buyerID,
		OfferPrice: in.OfferPrice,
		Message:    strings.TrimSpace(in.Message),
		Status:     StatusPending,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("you already have a pending offer on this bead")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "purchase request created",
		"request_id", req.ID,
		"bead_id", req.BeadID,
		"buyer_id", req.BuyerID,
	)

	s.notifyUser(ctx, b.OwnerID, func(to string) notify.Email {
		return notify.PurchaseRequestedEmail(to, b.Name, req.OfferPrice.StringFixed(2))
	})

	return &CreateResult{RequestID: req.ID, Status: req.Status}, nil
}

type RespondInput struct {
	RequestID       string
	ResponderID     string
	Accept          bool
	ResponseMessage string
	// Admin lets someone other than the bead or thread owner decide.
	Admin bool
}

// RespondToPurchaseRequest settles a pending offer. Accepting hands the
// bead to the buyer; the other pending offers on it are rejected.
func (s *Service) RespondToPurchaseRequest(
	ctx context.Context,
	in RespondInput,
) (res *RespondResult, err error) {
	ctx, finish := core.StartWorkflow(ctx, "purchase_respond",
		attribute.String("purchase_request.id", in.RequestID),
		attribute.Bool("purchase_request.accept", in.Accept),
	)
	defer func() { finish(err) }()

	if !core.IsValidID(in.RequestID) {
		return nil, core.InvalidRequest("invalid purchase request id")
	}

	req, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("purchase request")
		}
		return nil, err
	}

	if !req.IsPending() {
		return nil, core.InvalidRequest("purchase request already processed")
	}

	b, err := s.beads.GetBead(ctx, req.BeadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("bead")
		}
		return nil, err
	}

	if err := s.authorizeResponder(ctx, in, req, b); err != nil {
		return nil, err
	}

	req.ResponseMessage = strings.TrimSpace(in.ResponseMessage)
	res = &RespondResult{RequestID: req.ID, BeadID: b.ID}

	if !in.Accept {
		if err := s.repo.Reject(ctx, req); err != nil {
			return nil, s.settleError(err)
		}
		res.Status = StatusRejected
		res.NewOwnerID = b.OwnerID
		return res, nil
	}

	if _, err := s.users.GetUser(ctx, req.BuyerID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("buyer")
		}
		return nil, err
	}

	previous, err := s.repo.Accept(ctx, req)
	if err != nil {
		return nil, s.settleError(err)
	}

	res.Status = StatusAccepted
	res.NewOwnerID = req.BuyerID

	s.logger.InfoContext(ctx, "bead ownership transferred",
		"request_id", req.ID,
		"bead_id", b.ID,
		"from", previous,
		"to", req.BuyerID,
	)

	s.announceTransfer(ctx, b, req.BuyerID)
	s.notifyUser(ctx, req.BuyerID, func(to string) notify.Email {
		return notify.PurchaseAcceptedEmail(to, b.Name)
	})

	return res, nil
}

func (s *Service) authorizeResponder(
	ctx context.Context,
	in RespondInput,
	req *Request,
	b *bead.Bead,
) error {
	if in.Admin || b.IsOwner(in.ResponderID) {
		return nil
	}

	t, err := s.threads.Get(ctx, req.ThreadID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}
	if t != nil && t.IsOwner(in.ResponderID) {
		return nil
	}

	return core.ForbiddenError("only the bead owner can respond to this offer")
}

func (s *Service) settleError(err error) error {
	switch {
	case errors.Is(err, core.ErrConflict):
		return core.InvalidRequest("purchase request already processed")
	case errors.Is(err, core.ErrNotFound):
		return core.NotFoundError("bead")
	}
	return err
}

// CancelPurchaseRequest withdraws a pending offer. Only its buyer may.
func (s *Service) CancelPurchaseRequest(
	ctx context.Context,
	requestID, buyerID string,
) (*Request, error) {
	if !core.IsValidID(requestID) {
		return nil, core.InvalidRequest("invalid purchase request id")
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("purchase request")
		}
		return nil, err
	}

	if req.BuyerID != buyerID {
		return nil, core.ForbiddenError("only the buyer can cancel this offer")
	}

	if !req.IsPending() {
		return nil, core.InvalidRequest("purchase request already processed")
	}

	if err := s.repo.Cancel(ctx, req); err != nil {
		return nil, s.settleError(err)
	}

	return req, nil
}

func (s *Service) ListByBead(ctx context.Context, beadID string) ([]View, error) {
	if !core.IsValidID(beadID) {
		return nil, core.InvalidRequest("invalid bead ID")
	}
	return s.repo.ListByBead(ctx, beadID)
}

func (s *Service) ListByThread(ctx context.Context, threadID string) ([]View, error) {
	if !core.IsValidID(threadID) {
		return nil, core.InvalidRequest("invalid thread ID")
	}
	return s.repo.ListByThread(ctx, threadID)
}

func (s *Service) ListByBuyerEmail(ctx context.Context, email string) ([]View, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, core.InvalidRequest("email is required")
	}
	return s.repo.ListByBuyerEmail(ctx, email)
}

func (s *Service) announceTransfer(ctx context.Context, b *bead.Bead, newOwnerID string) {
	if s.feed == nil {
		return
	}

	err := s.feed.EmitOwnershipTransfer(ctx, feed.BeadEvent{
		BeadID:      b.ID,
		BeadName:    b.Name,
		Description: b.Description,
		Image:       b.Thumbnail(),
		UserID:      newOwnerID,
	})
	if err != nil {
		core.ObserveSideEffectFailure("feed_ownership_transfer")
		s.logger.WarnContext(ctx, "ownership transfer feed post failed",
			"bead_id", b.ID,
			"error", err,
		)
	}
}

func (s *Service) notifyUser(ctx context.Context, userID string, build func(to string) notify.Email) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		core.ObserveSideEffectFailure("purchase_email")
		s.logger.WarnContext(ctx, "purchase email skipped",
			"user_id", userID,
			"error", err,
		)
		return
	}

	s.notifier.Notify(ctx, build(u.Email))
}
