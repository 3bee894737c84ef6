package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// createTestToken signs an HS256 token for userID
func createTestToken(t *testing.T, secret, userID string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// captureUser runs the handler and returns the status and the user id seen downstream
func captureUser(h func(http.Handler) http.Handler, authHeader string) (int, string, bool) {
	var seen string
	called := false
	handler := h(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code, seen, called
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := NewJWTAuthMiddleware(testSecret, false)

	code, userID, called := captureUser(m.RequireAuth, "Bearer "+createTestToken(t, testSecret, "user-123", time.Hour))

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, called)
	assert.Equal(t, "user-123", userID)
}

func TestRequireAuth_Rejects(t *testing.T) {
	m := NewJWTAuthMiddleware(testSecret, false)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "malformed token", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + createTestToken(t, "other-secret", "user-123", time.Hour)},
		{name: "expired", header: "Bearer " + createTestToken(t, testSecret, "user-123", -time.Hour)},
		{name: "missing subject", header: "Bearer " + createTestToken(t, testSecret, "", time.Hour)},
		{name: "dev token outside dev mode", header: "Bearer test-token:user-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, called := captureUser(m.RequireAuth, tt.header)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.False(t, called)
		})
	}
}

func TestRequireAuth_RejectsNoneAlgorithm(t *testing.T) {
	m := NewJWTAuthMiddleware(testSecret, false)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	code, _, called := captureUser(m.RequireAuth, "Bearer "+unsigned)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, called)
}

func TestRequireAuth_DevToken(t *testing.T) {
	m := NewJWTAuthMiddleware("", true)

	code, userID, _ := captureUser(m.RequireAuth, "Bearer test-token:user-42")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-42", userID)

	code, _, _ = captureUser(m.RequireAuth, "Bearer test-token:")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOptionalAuth(t *testing.T) {
	m := NewJWTAuthMiddleware(testSecret, false)

	code, userID, called := captureUser(m.OptionalAuth, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, called)
	assert.Empty(t, userID)

	code, userID, _ = captureUser(m.OptionalAuth, "Bearer garbage")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, userID, "invalid tokens continue anonymously")

	_, userID, _ = captureUser(m.OptionalAuth, "Bearer "+createTestToken(t, testSecret, "user-7", time.Hour))
	assert.Equal(t, "user-7", userID)
}

func TestGetUserID_NotAuthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	assert.Empty(t, GetUserID(req))
	assert.Nil(t, GetJWTClaims(req))

	req = req.WithContext(SetTestUserID(req.Context(), "user-1"))
	assert.Equal(t, "user-1", GetUserID(req))
}
