// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type stubVerifier map[string]*AccessTokenClaims

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	if token == "expired" {
		return nil, core.ErrTokenExpired
	}
	claims, ok := s[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return claims, nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", GetUserID(r.Context()))
		w.Header().Set("X-Email", GetUserEmail(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func call(h http.Handler, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthenticator(t *testing.T) {
	verifier := stubVerifier{
		"good": {UserID: "u1", Role: RoleCustomer, Email: "ada@x.com"},
	}
	h := Authenticator(verifier)(echoUser())

	rec := call(h, "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Header().Get("X-User"))
	assert.Equal(t, "ada@x.com", rec.Header().Get("X-Email"))

	assert.Equal(t, http.StatusUnauthorized, call(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, "bogus").Code)

	rec = call(h, "expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestRequireAdmin(t *testing.T) {
	verifier := stubVerifier{
		"admin":    {UserID: "a", Role: RoleAdmin},
		"customer": {UserID: "c", Role: RoleCustomer},
	}
	h := Authenticator(verifier)(RequireAdmin(echoUser()))

	assert.Equal(t, http.StatusOK, call(h, "admin").Code)
	assert.Equal(t, http.StatusForbidden, call(h, "customer").Code)
}

func TestOptionalAuthIgnoresBadToken(t *testing.T) {
	h := OptionalAuth(stubVerifier{})(echoUser())

	rec := call(h, "bogus")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "bearer  abc ")
	assert.Equal(t, "abc", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(r))
}
