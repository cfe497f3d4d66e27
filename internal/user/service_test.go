// AngelaMos | 2026
// service_test.go

package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/middleware"
)

type fakeRepository struct {
	users map[string]*User
}

func newFakeRepository(users ...*User) *fakeRepository {
	f := &fakeRepository{users: map[string]*User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRepository) Create(_ context.Context, u *User) error {
	for _, other := range f.users {
		if other.Email == u.Email && !other.IsDeleted() {
			return core.ErrDuplicateKey
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted() {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && !u.IsDeleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepository) Update(_ context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok || u.IsDeleted() {
		return core.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (f *fakeRepository) List(_ context.Context, _ ListUsersParams) ([]User, int, error) {
	var out []User
	for _, u := range f.users {
		if !u.IsDeleted() {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) SearchByName(_ context.Context, name string, limit int) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.FullName), strings.ToLower(name)) {
			out = append(out, *u)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func member(name, role string) *User {
	return &User{
		ID:            core.NewID(),
		Email:         strings.ToLower(name) + "@x.com",
		FullName:      name,
		Role:          role,
		AccountStatus: StatusActive,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesEmail(t *testing.T) {
	svc := NewService(newFakeRepository())

	info, err := svc.Create(context.Background(), "  Ada@Example.COM ", "hash", " Ada ")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, "Ada", info.Name)
	assert.Equal(t, RoleCustomer, info.Role)

	again, err := svc.GetByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, info.ID, again.ID)
}

func TestUpdateMeIsPartial(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	ada.PhoneNumber = "555"
	svc := NewService(newFakeRepository(ada))

	updated, err := svc.UpdateMe(context.Background(), ada.ID, UpdateUserRequest{
		Avatar: strPtr("https://cdn.test/a.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", updated.FullName)
	assert.Equal(t, "555", updated.PhoneNumber)
	assert.Equal(t, "https://cdn.test/a.png", updated.Avatar)

	_, err = svc.UpdateMe(context.Background(), "", UpdateUserRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGetUserRejectsMalformedID(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.GetUser(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.GetUser(context.Background(), core.NewID())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateRoleAndStatus(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	svc := NewService(newFakeRepository(ada))
	ctx := context.Background()

	_, err := svc.UpdateUserRole(ctx, ada.ID, "Wizard")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	u, err := svc.UpdateUserRole(ctx, ada.ID, RoleSupplier)
	require.NoError(t, err)
	assert.Equal(t, RoleSupplier, u.Role)

	u, err = svc.UpdateUserStatus(ctx, ada.ID, StatusSuspended)
	require.NoError(t, err)
	assert.False(t, u.IsActive())
}

func TestCanDeleteUser(t *testing.T) {
	admin := member("Root", RoleAdmin)
	otherAdmin := member("Boss", RoleAdmin)
	ada := member("Ada", RoleCustomer)
	bob := member("Bob", RoleCustomer)
	svc := NewService(newFakeRepository(admin, otherAdmin, ada, bob))
	ctx := context.Background()

	assert.NoError(t, svc.CanDeleteUser(ctx, ada.ID, ada.ID))
	assert.NoError(t, svc.CanDeleteUser(ctx, admin.ID, ada.ID))
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, ada.ID, bob.ID), core.ErrForbidden)
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, admin.ID, otherAdmin.ID), core.ErrForbidden)
}

func TestSoftDeleteHidesUser(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	svc := NewService(newFakeRepository(ada))
	ctx := context.Background()

	require.NoError(t, svc.DeleteMe(ctx, ada.ID))

	_, err := svc.GetUser(ctx, ada.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteMe(ctx, ada.ID), core.ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc := NewService(newFakeRepository(member("Ada", RoleCustomer), member("Bob", RoleCustomer)))

	_, err := svc.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	found, err := svc.Search(context.Background(), "ad")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ada", found[0].FullName)
}

func withUser(userID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: userID,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestHandlerUpdateMe(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	repo := newFakeRepository(ada)

	r := chi.NewRouter()
	NewHandler(NewService(repo)).RegisterRoutes(r, withUser(ada.ID, RoleCustomer))

	body, err := json.Marshal(map[string]string{"full_name": "Ada L"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada L", repo.users[ada.ID].FullName)

	body, err = json.Marshal(map[string]string{"phone_number": strings.Repeat("9", 40)})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerProfileHidesContactDetails(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	bob := member("Bob", RoleCustomer)

	r := chi.NewRouter()
	NewHandler(NewService(newFakeRepository(ada, bob))).RegisterRoutes(r, withUser(bob.ID, RoleCustomer))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+ada.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), ada.Email)
	assert.Contains(t, rec.Body.String(), "Ada")
}
