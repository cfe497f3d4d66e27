// AngelaMos | 2026
// service_test.go

package purchase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/bead"
	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/feed"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
	"github.com/carterperez-dev/kandi-backend/internal/user"
)

// store backs every fake so ownership changes made by Accept are visible
// to the bead lookup.
type store struct {
	mu       sync.Mutex
	requests map[string]*Request
	beads    map[string]*bead.Bead
	threads  map[string]*thread.Thread
	members  map[string]thread.MemberSet
	users    map[string]*user.User
}

func newStore() *store {
	return &store{
		requests: map[string]*Request{},
		beads:    map[string]*bead.Bead{},
		threads:  map[string]*thread.Thread{},
		members:  map[string]thread.MemberSet{},
		users:    map[string]*user.User{},
	}
}

func (s *store) Create(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.requests {
		if other.IsPending() && other.BeadID == req.BeadID && other.BuyerID == req.BuyerID {
			return core.ErrDuplicateKey
		}
	}
	req.CreatedAt = time.Now()
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *store) GetByID(_ context.Context, id string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *store) filter(keep func(*Request) bool) []View {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []View
	for _, req := range s.requests {
		if keep(req) {
			out = append(out, View{Request: *req})
		}
	}
	return out
}

func (s *store) ListByBead(_ context.Context, beadID string) ([]View, error) {
	return s.filter(func(r *Request) bool { return r.BeadID == beadID }), nil
}

func (s *store) ListByThread(_ context.Context, threadID string) ([]View, error) {
	return s.filter(func(r *Request) bool { return r.ThreadID == threadID }), nil
}

func (s *store) ListByBuyerEmail(context.Context, string) ([]View, error) {
	return nil, nil
}

func (s *store) settleLocked(req *Request, status string) error {
	stored := s.requests[req.ID]
	if stored == nil || !stored.IsPending() {
		return core.ErrConflict
	}
	now := time.Now()
	stored.Status = status
	stored.ResponseMessage = req.ResponseMessage
	stored.RespondedAt = &now
	*req = *stored
	return nil
}

func (s *store) Accept(_ context.Context, req *Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beads[req.BeadID]
	if !ok {
		return "", core.ErrNotFound
	}
	if err := s.settleLocked(req, StatusAccepted); err != nil {
		return "", err
	}

	previous := b.OwnerID
	b.OwnerID = req.BuyerID
	b.OwnershipHistory = append(b.OwnershipHistory, previous)

	for _, other := range s.requests {
		if other.BeadID == req.BeadID && other.ID != req.ID && other.IsPending() {
			other.Status = StatusRejected
			other.ResponseMessage = soldMessage
		}
	}

	return previous, nil
}

func (s *store) Reject(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked(req, StatusRejected)
}

func (s *store) Cancel(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked(req, StatusCancelled)
}

func (s *store) Get(_ context.Context, id string) (*thread.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return t, nil
}

func (s *store) IsMember(_ context.Context, threadID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[threadID].Has(userID), nil
}

func (s *store) GetBead(_ context.Context, id string) (*bead.Bead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beads[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *store) GetUser(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

type recordingFeed struct {
	events []feed.BeadEvent
}

func (r *recordingFeed) EmitOwnershipTransfer(_ context.Context, ev feed.BeadEvent) error {
	r.events = append(r.events, ev)
	return nil
}

type captureNotifier struct {
	emails []notify.Email
}

func (c *captureNotifier) Notify(_ context.Context, email notify.Email) {
	c.emails = append(c.emails, email)
}

type fixture struct {
	svc      *Service
	store    *store
	feed     *recordingFeed
	notifier *captureNotifier
	thread   *thread.Thread
	bead     *bead.Bead
	owner    *user.User
	buyer    *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newStore()

	owner := &user.User{ID: core.NewID(), Email: "owner@x.com"}
	buyer := &user.User{ID: core.NewID(), Email: "buyer@x.com"}
	s.users[owner.ID] = owner
	s.users[buyer.ID] = buyer

	th := &thread.Thread{ID: core.NewID(), Name: "Trades", OwnerID: owner.ID}
	s.threads[th.ID] = th
	s.members[th.ID] = thread.NewMemberSet([]string{buyer.ID})

	threadID := th.ID
	b := &bead.Bead{
		ID:       core.NewID(),
		Name:     "Rainbow Cuff",
		OwnerID:  owner.ID,
		ThreadID: &threadID,
		Images:   []string{"https://cdn.test/cuff.png"},
	}
	s.beads[b.ID] = b

	f := &fixture{
		store:    s,
		feed:     &recordingFeed{},
		notifier: &captureNotifier{},
		thread:   th,
		bead:     b,
		owner:    owner,
		buyer:    buyer,
	}
	f.svc = NewService(s, Deps{
		Threads:  s,
		Beads:    s,
		Users:    s,
		Feed:     f.feed,
		Notifier: f.notifier,
	}, nil)
	return f
}

func (f *fixture) offer(t *testing.T, buyerID string) *CreateResult {
	t.Helper()
	res, err := f.svc.CreatePurchaseRequest(context.Background(), CreateInput{
		ThreadID:   f.thread.ID,
		BeadID:     f.bead.ID,
		BuyerID:    buyerID,
		OfferPrice: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) addMember() *user.User {
	u := &user.User{ID: core.NewID(), Email: core.NewID() + "@x.com"}
	f.store.users[u.ID] = u
	f.store.members[f.thread.ID][u.ID] = struct{}{}
	return u
}

func TestAcceptTransfersOwnership(t *testing.T) {
	f := newFixture(t)
	created := f.offer(t, f.buyer.ID)
	assert.Equal(t, StatusPending, created.Status)

	res, err := f.svc.RespondToPurchaseRequest(context.Background(), RespondInput{
		RequestID:   created.RequestID,
		ResponderID: f.owner.ID,
		Accept:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, res.Status)
	assert.Equal(t, f.bead.ID, res.BeadID)
	assert.Equal(t, f.buyer.ID, res.NewOwnerID)

	stored := f.store.beads[f.bead.ID]
	assert.Equal(t, f.buyer.ID, stored.OwnerID)
	assert.Equal(t, []string{f.owner.ID}, []string(stored.OwnershipHistory))
	assert.Equal(t, StatusAccepted, f.store.requests[created.RequestID].Status)

	require.Len(t, f.feed.events, 1)
	assert.Equal(t, f.buyer.ID, f.feed.events[0].UserID)

	require.Len(t, f.notifier.emails, 2)
	assert.Equal(t, notify.KindPurchaseRequested, f.notifier.emails[0].Kind)
	assert.Equal(t, "owner@x.com", f.notifier.emails[0].To)
	assert.Equal(t, notify.KindPurchaseAccepted, f.notifier.emails[1].Kind)
	assert.Equal(t, "buyer@x.com", f.notifier.emails[1].To)
}

func TestRejectLeavesOwnershipUnchanged(t *testing.T) {
	f := newFixture(t)
	created := f.offer(t, f.buyer.ID)

	res, err := f.svc.RespondToPurchaseRequest(context.Background(), RespondInput{
		RequestID:       created.RequestID,
		ResponderID:     f.owner.ID,
		ResponseMessage: "not for sale",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, f.owner.ID, res.NewOwnerID)
	assert.Equal(t, f.owner.ID, f.store.beads[f.bead.ID].OwnerID)
	assert.Equal(t, "not for sale", f.store.requests[created.RequestID].ResponseMessage)
	assert.Empty(t, f.feed.events)
}

func TestDuplicatePendingOfferConflicts(t *testing.T) {
	f := newFixture(t)
	f.offer(t, f.buyer.ID)

	_, err := f.svc.CreatePurchaseRequest(context.Background(), CreateInput{
		ThreadID:   f.thread.ID,
		BeadID:     f.bead.ID,
		BuyerID:    f.buyer.ID,
		OfferPrice: decimal.NewFromInt(20),
	})
	require.ErrorIs(t, err, core.ErrConflict)
	assert.Len(t, f.store.requests, 1)
}

func TestNonMemberBuyerForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePurchaseRequest(context.Background(), CreateInput{
		ThreadID:   f.thread.ID,
		BeadID:     f.bead.ID,
		BuyerID:    core.NewID(),
		OfferPrice: decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, f.store.requests)
}

func TestCreatePurchaseRequestPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := CreateInput{
		ThreadID:   f.thread.ID,
		BeadID:     f.bead.ID,
		BuyerID:    f.buyer.ID,
		OfferPrice: decimal.NewFromInt(5),
	}

	bad := base
	bad.BeadID = "xyz"
	_, err := f.svc.CreatePurchaseRequest(ctx, bad)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	zero := base
	zero.OfferPrice = decimal.Zero
	_, err = f.svc.CreatePurchaseRequest(ctx, zero)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	missing := base
	missing.ThreadID = core.NewID()
	_, err = f.svc.CreatePurchaseRequest(ctx, missing)
	require.ErrorIs(t, err, core.ErrNotFound)

	other := &thread.Thread{ID: core.NewID(), OwnerID: f.owner.ID}
	f.store.threads[other.ID] = other
	f.store.members[other.ID] = thread.NewMemberSet([]string{f.buyer.ID})
	elsewhere := base
	elsewhere.ThreadID = other.ID
	_, err = f.svc.CreatePurchaseRequest(ctx, elsewhere)
	require.ErrorIs(t, err, core.ErrNotFound, "bead is not in that thread")

	own := base
	own.BuyerID = f.owner.ID
	_, err = f.svc.CreatePurchaseRequest(ctx, own)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	assert.Empty(t, f.store.requests)
}

func TestRespondIsTerminal(t *testing.T) {
	f := newFixture(t)
	created := f.offer(t, f.buyer.ID)
	ctx := context.Background()
	in := RespondInput{RequestID: created.RequestID, ResponderID: f.owner.ID, Accept: true}

	_, err := f.svc.RespondToPurchaseRequest(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.RespondToPurchaseRequest(ctx, in)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAcceptRejectsCompetingOffers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rival := f.addMember()

	first := f.offer(t, f.buyer.ID)
	second := f.offer(t, rival.ID)

	_, err := f.svc.RespondToPurchaseRequest(ctx, RespondInput{
		RequestID:   first.RequestID,
		ResponderID: f.owner.ID,
		Accept:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, f.store.requests[second.RequestID].Status)

	_, err = f.svc.RespondToPurchaseRequest(ctx, RespondInput{
		RequestID: second.RequestID,
		Accept:    true,
		Admin:     true,
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, f.buyer.ID, f.store.beads[f.bead.ID].OwnerID)
}

func TestRespondAuthorization(t *testing.T) {
	f := newFixture(t)
	created := f.offer(t, f.buyer.ID)

	_, err := f.svc.RespondToPurchaseRequest(context.Background(), RespondInput{
		RequestID:   created.RequestID,
		ResponderID: f.buyer.ID,
		Accept:      true,
	})
	require.ErrorIs(t, err, core.ErrForbidden)
	assert.Equal(t, f.owner.ID, f.store.beads[f.bead.ID].OwnerID)
}

func TestRespondMissingBeadOrBuyer(t *testing.T) {
	t.Run("bead gone", func(t *testing.T) {
		f := newFixture(t)
		created := f.offer(t, f.buyer.ID)
		delete(f.store.beads, f.bead.ID)

		_, err := f.svc.RespondToPurchaseRequest(context.Background(), RespondInput{
			RequestID: created.RequestID,
			Accept:    true,
			Admin:     true,
		})
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("buyer gone", func(t *testing.T) {
		f := newFixture(t)
		created := f.offer(t, f.buyer.ID)
		delete(f.store.users, f.buyer.ID)

		_, err := f.svc.RespondToPurchaseRequest(context.Background(), RespondInput{
			RequestID:   created.RequestID,
			ResponderID: f.owner.ID,
			Accept:      true,
		})
		require.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, f.owner.ID, f.store.beads[f.bead.ID].OwnerID)
		assert.True(t, f.store.requests[created.RequestID].IsPending())
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RespondToPurchaseRequest(context.Background(), RespondInput{
			RequestID: core.NewID(),
			Admin:     true,
		})
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestCancelBuyerOnly(t *testing.T) {
	f := newFixture(t)
	created := f.offer(t, f.buyer.ID)
	ctx := context.Background()

	_, err := f.svc.CancelPurchaseRequest(ctx, created.RequestID, f.owner.ID)
	require.ErrorIs(t, err, core.ErrForbidden)

	req, err := f.svc.CancelPurchaseRequest(ctx, created.RequestID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, req.Status)

	_, err = f.svc.CancelPurchaseRequest(ctx, created.RequestID, f.buyer.ID)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	f.offer(t, f.buyer.ID)
}
