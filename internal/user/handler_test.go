// AngelaMos | 2026
// handler_test.go

package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/middleware"
)

func adminRouter(repo *fakeRepository, callerID, role string) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(NewService(repo))
	h.RegisterRoutes(r, withUser(callerID, role))
	h.RegisterAdminRoutes(r, withUser(callerID, role), middleware.RequireAdmin)
	return r
}

func send(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlerAdminRoutesRequireAdmin(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	h := adminRouter(newFakeRepository(ada), ada.ID, RoleCustomer)

	assert.Equal(t, http.StatusForbidden, send(t, h, http.MethodGet, "/admin/users/", nil).Code)
}

func TestHandlerListUsersRejectsUnknownRole(t *testing.T) {
	root := member("Root", RoleAdmin)
	h := adminRouter(newFakeRepository(root), root.ID, RoleAdmin)

	assert.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/admin/users/?role=Supplier", nil).Code)
	assert.Equal(t, http.StatusBadRequest, send(t, h, http.MethodGet, "/admin/users/?role=Wizard", nil).Code)
}

func TestHandlerAdminUpdatesRoleAndStatus(t *testing.T) {
	root := member("Root", RoleAdmin)
	ada := member("Ada", RoleCustomer)
	repo := newFakeRepository(root, ada)
	h := adminRouter(repo, root.ID, RoleAdmin)

	rec := send(t, h, http.MethodPut, "/admin/users/"+ada.ID+"/role", map[string]string{"role": RoleSupplier})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleSupplier, repo.users[ada.ID].Role)

	rec = send(t, h, http.MethodPut, "/admin/users/"+ada.ID+"/status", map[string]string{"status": StatusSuspended})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusSuspended, repo.users[ada.ID].AccountStatus)

	rec = send(t, h, http.MethodPut, "/admin/users/"+core.NewID()+"/role", map[string]string{"role": RoleSupplier})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDeleteUser(t *testing.T) {
	root := member("Root", RoleAdmin)
	other := member("Other", RoleAdmin)
	ada := member("Ada", RoleCustomer)
	repo := newFakeRepository(root, other, ada)
	h := adminRouter(repo, root.ID, RoleAdmin)

	assert.Equal(t, http.StatusForbidden, send(t, h, http.MethodDelete, "/admin/users/"+other.ID, nil).Code)
	assert.Nil(t, repo.users[other.ID].DeletedAt)

	assert.Equal(t, http.StatusNoContent, send(t, h, http.MethodDelete, "/admin/users/"+ada.ID, nil).Code)
	assert.NotNil(t, repo.users[ada.ID].DeletedAt)

	assert.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/admin/users/"+ada.ID, nil).Code)
}

func TestHandlerGetMeAfterDelete(t *testing.T) {
	ada := member("Ada", RoleCustomer)
	h := adminRouter(newFakeRepository(ada), ada.ID, RoleCustomer)

	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/users/me", nil).Code)
	require.Equal(t, http.StatusNoContent, send(t, h, http.MethodDelete, "/users/me", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/users/me", nil).Code)
}
