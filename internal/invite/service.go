// AngelaMos | 2026
// service.go

package invite

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/kandi-backend/internal/config"
	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
	"github.com/carterperez-dev/kandi-backend/internal/user"
)

type ThreadAccess interface {
	Get(ctx context.Context, id string) (*thread.Thread, error)
	IsMember(ctx context.Context, threadID, userID string) (bool, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, email notify.Email)
}

type Service struct {
	repo      Repository
	threads   ThreadAccess
	users     UserLookup
	notifier  Notifier
	ttl       time.Duration
	publicURL string
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	threads ThreadAccess,
	users UserLookup,
	notifier Notifier,
	cfg *config.Config,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.Invite.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Service{
		repo:      repo,
		threads:   threads,
		users:     users,
		notifier:  notifier,
		ttl:       ttl,
		publicURL: strings.TrimRight(cfg.App.PublicURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

type CreateInput struct {
	ThreadID  string
	InviterID string
	Email     string
	// Admin skips the owner-or-member check on the inviter.
	Admin bool
}

func (s *Service) CreateInvite(ctx context.Context, in CreateInput) (res *CreateResult, err error) {
	ctx, finish := core.StartWorkflow(ctx, "invite_create",
		attribute.String("thread.id", in.ThreadID),
	)
	defer func() { finish(err) }()

	if err := core.ValidateIDs(in.ThreadID, in.InviterID); err != nil {
		return nil, err
	}

	t, err := s.threads.Get(ctx, in.ThreadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("thread")
		}
		return nil, err
	}

	if !in.Admin && !t.IsOwner(in.InviterID) {
		member, err := s.threads.IsMember(ctx, t.ID, in.InviterID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, core.ForbiddenError("only thread members can send invites")
		}
	}

	token, err := core.GenerateInviteToken()
	if err != nil {
		return nil, core.InternalError("failed to generate invite token", err)
	}

	inviter := in.InviterID
	inv := &Invite{
		ID:         core.NewID(),
		ThreadID:   t.ID,
		ThreadName: t.Name,
		InviterID:  &inviter,
		TokenHash:  core.HashToken(token),
		Status:     StatusPending,
		ExpiresAt:  s.now().Add(s.ttl),
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		inv.Email = &email
		inv.UserID = s.resolveUser(ctx, email)
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("a pending invite already exists for this user")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "invite created",
		"invite_id", inv.ID,
		"thread_id", inv.ThreadID,
		"resolved", inv.UserID != nil,
	)

	if email != "" {
		s.notifier.Notify(ctx, notify.ThreadInviteEmail(email, t.Name, s.acceptURL(token)))
	}

	return &CreateResult{
		InviteID:  inv.ID,
		Token:     token,
		ExpiresAt: inv.ExpiresAt,
	}, nil
}

// resolveUser maps an email to an account. Lookup failures leave the
// invite addressed by email only.
func (s *Service) resolveUser(ctx context.Context, email string) *string {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.WarnContext(ctx, "invite email lookup failed", "error", err)
		}
		return nil
	}
	id := u.ID
	return &id
}

func (s *Service) acceptURL(token string) string {
	return s.publicURL + "/invites/accept?token=" + url.QueryEscape(token)
}

// RespondToInvite settles a pending invite. Accepting adds the invite's
// resolved user to the thread. An invite that only carries an email adds
// the responder when their account email matches it, and otherwise is
// accepted without adding anyone.
func (s *Service) RespondToInvite(
	ctx context.Context,
	inviteID, responderID string,
	accept bool,
) (res *RespondResult, err error) {
	ctx, finish := core.StartWorkflow(ctx, "invite_respond",
		attribute.String("invite.id", inviteID),
	)
	defer func() { finish(err) }()

	if !core.IsValidID(inviteID) {
		return nil, core.InvalidRequest("invalid invite id")
	}

	inv, err := s.repo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("invite")
		}
		return nil, err
	}

	if !inv.IsPending() {
		return nil, core.InvalidRequest("invite already processed")
	}

	if inv.IsExpired(s.now()) {
		return nil, core.InvalidRequest("invite has expired")
	}

	if inv.UserID != nil && responderID != "" && *inv.UserID != responderID {
		return nil, core.ForbiddenError("this invite was sent to another user")
	}

	res = &RespondResult{InviteID: inv.ID, ThreadID: inv.ThreadID}

	if !accept {
		if err := s.repo.Decline(ctx, inv); err != nil {
			return nil, s.transitionError(err)
		}
		res.Status = StatusDeclined
		return res, nil
	}

	memberID, err := s.memberFor(ctx, inv, responderID)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.Accept(ctx, inv, memberID)
	if err != nil {
		return nil, s.transitionError(err)
	}

	res.Status = StatusAccepted
	res.MemberID = memberID
	res.AlreadyMember = memberID != "" && !added

	s.logger.InfoContext(ctx, "invite accepted",
		"invite_id", inv.ID,
		"thread_id", inv.ThreadID,
		"member_id", memberID,
		"already_member", res.AlreadyMember,
	)

	return res, nil
}

func (s *Service) memberFor(ctx context.Context, inv *Invite, responderID string) (string, error) {
	if inv.UserID != nil {
		return core.CanonicalID(*inv.UserID)
	}

	if inv.Email == nil || responderID == "" {
		return "", nil
	}

	responder, err := s.users.GetUser(ctx, responderID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	if !inv.AddressedTo(responder.Email) {
		return "", nil
	}

	return core.CanonicalID(responder.ID)
}

func (s *Service) transitionError(err error) error {
	if errors.Is(err, core.ErrConflict) {
		return core.InvalidRequest("invite already processed")
	}
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError("user")
	}
	return err
}

// ResolveToken finds the invite behind a raw token from an invite link.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Invite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, core.InvalidRequest("invite token is required")
	}

	inv, err := s.repo.GetByTokenHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("invite")
		}
		return nil, err
	}

	return inv, nil
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, core.InvalidRequest("email is required")
	}
	return s.repo.ListPendingByEmail(ctx, email)
}

func (s *Service) Now() time.Time {
	return s.now()
}
