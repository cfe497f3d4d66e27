// AngelaMos | 2026
// handler_test.go

package thread

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

func fakeAuth(userID, role string) func(http.Handler) http.Handler {
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

func newRouter(svc *Service, userID, role string) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, fakeAuth(userID, role))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlerCreateUsesCaller(t *testing.T) {
	svc, _ := newTestService(t)
	caller := core.NewID()

	rec := doJSON(t, newRouter(svc, caller, middleware.RoleCustomer), http.MethodPost, "/threads", map[string]any{
		"name": "Festival",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data ThreadResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, caller, resp.Data.OwnerID)
}

func TestHandlerAddMembersRequiresOwner(t *testing.T) {
	svc, _ := newTestService(t)
	th := createThread(t, svc)
	body := map[string]any{"member_ids": []string{core.NewID()}}

	rec := doJSON(t, newRouter(svc, core.NewID(), middleware.RoleCustomer), http.MethodPost,
		"/threads/"+th.ID+"/members", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, newRouter(svc, core.NewID(), middleware.RoleAdmin), http.MethodPost,
		"/threads/"+th.ID+"/members", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerAddExistingMembersIsBadRequest(t *testing.T) {
	svc, _ := newTestService(t)
	a := core.NewID()
	th := createThread(t, svc, a)

	rec := doJSON(t, newRouter(svc, th.OwnerID, middleware.RoleCustomer), http.MethodPost,
		"/threads/"+th.ID+"/members", map[string]any{"member_ids": []string{a}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetUnknownThread(t *testing.T) {
	svc, _ := newTestService(t)

	rec := doJSON(t, newRouter(svc, core.NewID(), middleware.RoleCustomer), http.MethodGet,
		"/threads/"+core.NewID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, newRouter(svc, core.NewID(), middleware.RoleCustomer), http.MethodGet,
		"/threads/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, newRouter(svc, core.NewID(), middleware.RoleCustomer), http.MethodGet,
		"/threads/urn:uuid:"+core.NewID(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerJoin(t *testing.T) {
	svc, repo := newTestService(t)
	th := createThread(t, svc)
	caller := core.NewID()

	rec := doJSON(t, newRouter(svc, caller, middleware.RoleCustomer), http.MethodPost,
		"/threads/"+th.ID+"/join", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, repo.members[th.ID], caller)
}
