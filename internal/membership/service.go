// AngelaMos | 2026
// service.go

package membership

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

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
}

type Notifier interface {
	Notify(ctx context.Context, email notify.Email)
}

type Service struct {
	repo     Repository
	threads  ThreadAccess
	users    UserLookup
	notifier Notifier
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	threads ThreadAccess,
	users UserLookup,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		threads:  threads,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateMembershipRequest files a pending join request. A second pending
// request for the same thread and requester is a Conflict.
func (s *Service) CreateMembershipRequest(
	ctx context.Context,
	threadID, requesterID, message string,
) (req *Request, err error) {
	ctx, finish := core.StartWorkflow(ctx, "membership_request_create",
		attribute.String("thread.id", threadID),
	)
	defer func() { finish(err) }()

	if err := core.ValidateIDs(threadID, requesterID); err != nil {
		return nil, err
	}

	t, err := s.threads.Get(ctx, threadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("thread")
		}
		return nil, err
	}

	if t.IsOwner(requesterID) {
		return nil, core.InvalidRequest("you own this thread")
	}

	member, err := s.threads.IsMember(ctx, t.ID, requesterID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, core.InvalidRequest("you are already a member of this thread")
	}

	req = &Request{
		ID:          core.NewID(),
		ThreadID:    t.ID,
		RequesterID: requesterID,
		Message:     strings.TrimSpace(message),
		Status:      StatusPending,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.ConflictError("a pending request for this thread already exists")
		case errors.Is(err, core.ErrNotFound):
			return nil, core.NotFoundError("user")
		}
		return nil, err
	}

	return req, nil
}

type RespondInput struct {
	RequestID       string
	ThreadID        string
	ResponderID     string
	Accept          bool
	ResponseMessage string
	// Admin lets a non-owner decide.
	Admin bool
}

// RespondToMembershipRequest approves or rejects a pending request. On
// approval the requester joins the thread.
func (s *Service) RespondToMembershipRequest(
	ctx context.Context,
	in RespondInput,
) (res *RespondResult, err error) {
	ctx, finish := core.StartWorkflow(ctx, "membership_request_respond",
		attribute.String("membership_request.id", in.RequestID),
	)
	defer func() { finish(err) }()

	if !core.IsValidID(in.RequestID) {
		return nil, core.InvalidRequest("invalid membership request id")
	}
	if err := core.ValidateIDs(in.ResponderID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("membership request")
		}
		return nil, err
	}

	if in.ThreadID != "" && !strings.EqualFold(in.ThreadID, req.ThreadID) {
		return nil, core.NotFoundError("membership request")
	}

	t, err := s.threads.Get(ctx, req.ThreadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("thread")
		}
		return nil, err
	}

	if !in.Admin && !t.IsOwner(in.ResponderID) {
		return nil, core.ForbiddenError("only the thread owner can respond to this request")
	}

	if !req.IsPending() {
		return nil, core.InvalidRequest("membership request already processed")
	}

	responder := in.ResponderID
	req.ResponderID = &responder
	req.ResponseMessage = strings.TrimSpace(in.ResponseMessage)

	res = &RespondResult{RequestID: req.ID, ThreadID: req.ThreadID}

	if in.Accept {
		added, err := s.repo.Approve(ctx, req)
		if err != nil {
			return nil, s.settleError(err)
		}
		res.Status = StatusApproved
		res.AlreadyMember = !added
	} else {
		if err := s.repo.Reject(ctx, req); err != nil {
			return nil, s.settleError(err)
		}
		res.Status = StatusRejected
	}

	s.logger.InfoContext(ctx, "membership request settled",
		"request_id", req.ID,
		"thread_id", req.ThreadID,
		"status", res.Status,
	)

	s.notifyRequester(ctx, req.RequesterID, t.Name, in.Accept)

	return res, nil
}

func (s *Service) settleError(err error) error {
	if errors.Is(err, core.ErrConflict) {
		return core.InvalidRequest("membership request already processed")
	}
	return err
}

func (s *Service) notifyRequester(ctx context.Context, requesterID, threadName string, approved bool) {
	u, err := s.users.GetUser(ctx, requesterID)
	if err != nil {
		core.ObserveSideEffectFailure("membership_decision_email")
		s.logger.WarnContext(ctx, "membership decision email skipped",
			"requester_id", requesterID,
			"error", err,
		)
		return
	}

	s.notifier.Notify(ctx, notify.MembershipDecisionEmail(u.Email, threadName, approved))
}

// ListByOwnerEmail returns pending requests on threads owned by the
// account with that email.
func (s *Service) ListByOwnerEmail(ctx context.Context, email string) ([]View, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, core.InvalidRequest("email is required")
	}
	return s.repo.ListPendingByOwnerEmail(ctx, email)
}
