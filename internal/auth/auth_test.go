// internal/auth/auth_test.go
package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseStaticTokens(t *testing.T) {
	id := uuid.New()
	raw := "devtoken=" + id.String() + ":parent:parent@example.com:08031234567, admintoken=" +
		uuid.NewString() + ":admin:admin@example.com"

	tokens, err := ParseStaticTokens(raw)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	require.Equal(t, "parent", tokens["devtoken"].Role)
	require.Equal(t, "08031234567", tokens["devtoken"].Phone)
	require.Equal(t, id, tokens["devtoken"].ID)
	require.Equal(t, "admin", tokens["admintoken"].Role)

	_, err = ParseStaticTokens("garbage")
	require.Error(t, err)
	_, err = ParseStaticTokens("tok=not-a-uuid:parent:x@y.z")
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	id := uuid.New()
	verifier := NewStaticVerifier(map[string]Principal{
		"devtoken": {ID: id, Email: "parent@example.com", Role: "parent"},
	})

	var seen *Principal
	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req.Header.Set("Authorization", "Bearer devtoken")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, id, seen.ID)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(
		WithPrincipal(req.Context(), &Principal{ID: uuid.New(), Role: "parent"})))
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(
		WithPrincipal(req.Context(), &Principal{ID: uuid.New(), Role: "admin"})))
	require.Equal(t, http.StatusNoContent, rr.Code)
}
