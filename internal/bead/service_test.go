// AngelaMos | 2026
// service_test.go

package bead

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/feed"
	"github.com/carterperez-dev/kandi-backend/internal/qrcode"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
)

type fakeRepository struct {
	mu    sync.Mutex
	beads map[string]*Bead
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{beads: map[string]*Bead{}}
}

func (f *fakeRepository) Create(_ context.Context, b *Bead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	f.beads[b.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Bead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beads[id]
	if !ok || b.DeletedAt != nil {
		return nil, core.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepository) List(_ context.Context, _ core.PageParams) ([]Summary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []Summary
	for _, b := range f.beads {
		if b.DeletedAt == nil {
			rows = append(rows, Summary{Bead: *b})
		}
	}
	return rows, len(rows), nil
}

func (f *fakeRepository) ListByThread(_ context.Context, threadID string) ([]Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []Summary
	for _, b := range f.beads {
		if b.DeletedAt == nil && b.InThread(threadID) {
			rows = append(rows, Summary{Bead: *b})
		}
	}
	return rows, nil
}

func (f *fakeRepository) Update(_ context.Context, b *Bead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.beads[b.ID]
	if !ok {
		return core.ErrNotFound
	}
	owner := stored.OwnerID
	cp := *b
	cp.OwnerID = owner
	f.beads[b.ID] = &cp
	return nil
}

func (f *fakeRepository) AppendImages(_ context.Context, id string, urls []string) (*Bead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beads[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if len(b.Images)+len(urls) > MaxImages {
		return nil, core.ErrInvalidInput
	}
	b.Images = append(b.Images, urls...)
	cp := *b
	return &cp, nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beads[id]
	if !ok || b.DeletedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	b.DeletedAt = &now
	return nil
}

type fakeThreads map[string]*thread.Thread

func (f fakeThreads) Get(_ context.Context, id string) (*thread.Thread, error) {
	t, ok := f[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return t, nil
}

type stubQR struct {
	err error
}

func (q stubQR) Generate(_ context.Context, kind qrcode.Kind, id string) (*qrcode.Asset, error) {
	if q.err != nil {
		return nil, q.err
	}
	return &qrcode.Asset{
		Path: "qr/" + id + ".png",
		Link: qrcode.Link("https://kandi.test/dashboard", kind, id),
	}, nil
}

type recordingFeed struct {
	events []feed.BeadEvent
	err    error
}

func (r *recordingFeed) EmitBeadCreated(_ context.Context, ev feed.BeadEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

type fixture struct {
	svc     *Service
	repo    *fakeRepository
	threads fakeThreads
	feed    *recordingFeed
}

func newFixture(t *testing.T, qr qrcode.Generator) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newFakeRepository(),
		threads: fakeThreads{},
		feed:    &recordingFeed{},
	}
	if qr == nil {
		qr = stubQR{}
	}
	f.svc = NewService(f.repo, f.threads, qr, f.feed, nil)
	return f
}

func (f *fixture) addThread() *thread.Thread {
	th := &thread.Thread{ID: core.NewID(), Name: "Rave", OwnerID: core.NewID()}
	f.threads[th.ID] = th
	return th
}

func TestCreateBeadInThreadEmitsFeedPost(t *testing.T) {
	f := newFixture(t, nil)
	th := f.addThread()
	owner := core.NewID()

	b, err := f.svc.CreateBead(context.Background(), owner, CreateBeadRequest{
		Name:         "Pony Bead",
		Description:  "pastel mix",
		PricePerUnit: decimal.RequireFromString("0.25"),
		ThreadID:     th.ID,
		Images:       []string{"https://cdn.test/a.png", "https://cdn.test/b.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, owner, b.OwnerID)
	require.NotNil(t, b.ThreadID)
	assert.Equal(t, th.ID, *b.ThreadID)
	assert.Equal(t, "https://kandi.test/dashboard/charms/"+b.ID, b.Link)
	assert.Empty(t, b.OwnershipHistory)

	require.Len(t, f.feed.events, 1)
	ev := f.feed.events[0]
	assert.Equal(t, b.ID, ev.BeadID)
	assert.Equal(t, "pastel mix", ev.Description)
	assert.Equal(t, "https://cdn.test/a.png", ev.Image)
}

func TestCreateBeadWithoutThreadSkipsFeed(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateBead(context.Background(), core.NewID(), CreateBeadRequest{Name: "Solo"})
	require.NoError(t, err)
	assert.Empty(t, f.feed.events)
}

func TestCreateBeadFeedFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, nil)
	f.feed.err = errors.New("feed down")
	th := f.addThread()

	b, err := f.svc.CreateBead(context.Background(), core.NewID(), CreateBeadRequest{
		Name:     "Glow",
		ThreadID: th.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, f.repo.beads, b.ID)
}

func TestCreateBeadValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := core.NewID()

	_, err := f.svc.CreateBead(ctx, owner, CreateBeadRequest{
		Name:   "Too many",
		Images: []string{"a", "b", "c", "d", "e", "f"},
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.svc.CreateBead(ctx, owner, CreateBeadRequest{Name: "Lost", ThreadID: core.NewID()})
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.CreateBead(ctx, "bad", CreateBeadRequest{Name: "x"})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.svc.CreateBead(ctx, owner, CreateBeadRequest{
		Name:         "Negative",
		PricePerUnit: decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	assert.Empty(t, f.repo.beads)
}

func TestCreateBeadQRFailurePersistsNothing(t *testing.T) {
	f := newFixture(t, stubQR{err: errors.New("disk full")})

	_, err := f.svc.CreateBead(context.Background(), core.NewID(), CreateBeadRequest{Name: "x"})
	require.ErrorIs(t, err, core.ErrInternal)
	assert.Empty(t, f.repo.beads)
}

func TestAddImagesLimit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	b, err := f.svc.CreateBead(ctx, core.NewID(), CreateBeadRequest{
		Name:   "Charm",
		Images: []string{"1", "2", "3"},
	})
	require.NoError(t, err)

	_, err = f.svc.AddImages(ctx, b.ID, []string{"4", "5", "6"})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	updated, err := f.svc.AddImages(ctx, b.ID, []string{"4", "5"})
	require.NoError(t, err)
	assert.Len(t, updated.Images, MaxImages)
}

func TestUpdateBeadKeepsOwner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := core.NewID()

	b, err := f.svc.CreateBead(ctx, owner, CreateBeadRequest{Name: "Star", Color: "red"})
	require.NoError(t, err)

	literal := "string"
	qty := 40
	updated, err := f.svc.UpdateBead(ctx, b.ID, UpdateBeadRequest{Material: &literal, Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, "string", updated.Material)
	assert.Equal(t, "red", updated.Color)
	assert.Equal(t, 40, updated.Quantity)
	assert.Equal(t, owner, f.repo.beads[b.ID].OwnerID)
}

func TestRequireOwnerAndDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := core.NewID()

	b, err := f.svc.CreateBead(ctx, owner, CreateBeadRequest{Name: "Heart"})
	require.NoError(t, err)

	_, err = f.svc.RequireOwner(ctx, b.ID, core.NewID())
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.RequireOwner(ctx, b.ID, owner)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBead(ctx, b.ID))
	_, err = f.svc.GetBead(ctx, b.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
}
