// AngelaMos | 2026
// service_test.go

package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
)

type fakeRepository struct {
	stored []Message
	err    error
}

func (f *fakeRepository) Create(_ context.Context, m *Message) error {
	if f.err != nil {
		return f.err
	}
	m.CreatedAt = time.Now()
	f.stored = append(f.stored, *m)
	return nil
}

type captureNotifier struct {
	emails []notify.Email
}

func (c *captureNotifier) Notify(_ context.Context, email notify.Email) {
	c.emails = append(c.emails, email)
}

func TestCreateContactPersistsThenNotifies(t *testing.T) {
	repo := &fakeRepository{}
	n := &captureNotifier{}
	svc := NewService(repo, n, "support@kandi.test", nil)

	m, err := svc.CreateContact(context.Background(), " Ada ", "ADA@x.com", " hello ")
	require.NoError(t, err)

	require.Len(t, repo.stored, 1)
	assert.Equal(t, "Ada", m.Name)
	assert.Equal(t, "ada@x.com", m.Email)
	assert.Equal(t, "hello", m.Message)

	require.Len(t, n.emails, 1)
	assert.Equal(t, notify.KindContact, n.emails[0].Kind)
	assert.Equal(t, "support@kandi.test", n.emails[0].To)
	assert.Contains(t, n.emails[0].Body, "ada@x.com")
}

func TestCreateContactStoreFailureSendsNothing(t *testing.T) {
	repo := &fakeRepository{err: errors.New("db down")}
	n := &captureNotifier{}
	svc := NewService(repo, n, "support@kandi.test", nil)

	_, err := svc.CreateContact(context.Background(), "Ada", "ada@x.com", "hello")
	require.Error(t, err)
	assert.Empty(t, n.emails)
}

func TestCreateContactWithoutSupportAddress(t *testing.T) {
	repo := &fakeRepository{}
	n := &captureNotifier{}
	svc := NewService(repo, n, "", nil)

	_, err := svc.CreateContact(context.Background(), "Ada", "ada@x.com", "hello")
	require.NoError(t, err)
	assert.Len(t, repo.stored, 1)
	assert.Empty(t, n.emails)
}

func TestCreateContactRejectsBlank(t *testing.T) {
	svc := NewService(&fakeRepository{}, &captureNotifier{}, "s@x.com", nil)

	_, err := svc.CreateContact(context.Background(), "Ada", "ada@x.com", "   ")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestHandlerCreate(t *testing.T) {
	repo := &fakeRepository{}
	r := chi.NewRouter()
	NewHandler(NewService(repo, &captureNotifier{}, "s@x.com", nil)).RegisterRoutes(r, nil)

	post := func(body any) *httptest.ResponseRecorder {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post(CreateRequest{Name: "Ada", Email: "ada@x.com", Message: "hi"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = post(CreateRequest{Name: "Ada", Email: "not-an-email", Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, repo.stored, 1)
}
