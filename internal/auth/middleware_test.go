package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func protected(t *testing.T) http.Handler {
	return AdminAuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminFrom(r.Context())
		require.True(t, ok)
		w.Write([]byte(claims.Email))
	}))
}

func call(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/sync", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := IssueToken(secret, "desk@example.com", time.Hour)
	require.NoError(t, err)

	rec := call(protected(t), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "desk@example.com", rec.Body.String())
}

func TestMiddlewareRejects(t *testing.T) {
	expired, err := IssueToken(secret, "desk@example.com", -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", "desk@example.com", time.Hour)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "desk@example.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + expired,
		"wrong secret":   "Bearer " + foreign,
		"none algorithm": "Bearer " + unsigned,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := call(protected(t), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMiddlewareWithoutSecretRejectsEverything(t *testing.T) {
	token, err := IssueToken(secret, "desk@example.com", time.Hour)
	require.NoError(t, err)

	h := AdminAuthMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	assert.Equal(t, http.StatusUnauthorized, call(h, "Bearer "+token).Code)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "desk@example.com", time.Hour)
	assert.Error(t, err)
}
