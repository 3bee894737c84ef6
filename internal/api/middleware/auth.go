package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Context keys for storing user information
type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	JWTClaimsKey contextKey = "jwt_claims"
)

// DevTokenPrefix marks unsigned development tokens: "test-token:<userId>"
const DevTokenPrefix = "test-token:"

// Claims are the JWT claims accepted by the API. The user id is the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTAuthMiddleware authenticates Bearer tokens signed with HS256
type JWTAuthMiddleware struct {
	secret  []byte
	devMode bool
}

// NewJWTAuthMiddleware creates the auth middleware.
// devMode additionally accepts DevTokenPrefix tokens without a signature.
func NewJWTAuthMiddleware(secret string, devMode bool) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		secret:  []byte(secret),
		devMode: devMode,
	}
}

// RequireAuth middleware ensures the user is authenticated.
// If not authenticated, returns 401.
func (m *JWTAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, "Missing or malformed Authorization header. Expected: Bearer <token>")
			return
		}

		claims, err := m.authenticate(token)
		if err != nil {
			log.Printf("[AUTH_FAILURE] ip=%s method=%s path=%s error=%v",
				r.RemoteAddr, r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuth loads the user if a valid token is present, but doesn't require it
func (m *JWTAuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authenticate(token)
		if err != nil {
			// Invalid token - continue without user context
			log.Printf("Optional auth failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (m *JWTAuthMiddleware) authenticate(token string) (*Claims, error) {
	if m.devMode && strings.HasPrefix(token, DevTokenPrefix) {
		userID := strings.TrimSpace(strings.TrimPrefix(token, DevTokenPrefix))
		if userID == "" {
			return nil, errors.New("dev token has no user id")
		}
		return &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}, nil
	}
	if len(m.secret) == 0 {
		return nil, errors.New("JWT_SECRET not configured")
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("HS256 verification failed: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("HS256 verification failed: invalid claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func withClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	return context.WithValue(ctx, JWTClaimsKey, claims)
}

// GetUserID extracts the user id from the request context.
// Returns empty string if not authenticated.
func GetUserID(r *http.Request) string {
	return GetAuthenticatedUserID(r.Context())
}

// GetAuthenticatedUserID extracts the authenticated user id from the context
func GetAuthenticatedUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// GetJWTClaims extracts the JWT claims from the request context.
// Returns nil if not authenticated.
func GetJWTClaims(r *http.Request) *Claims {
	claims, _ := r.Context().Value(JWTClaimsKey).(*Claims)
	return claims
}

// SetTestUserID sets the user id in the context for testing purposes.
// This function should ONLY be used in tests to mock authenticated users.
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	response := `{"error":"AuthenticationRequired","message":"` + message + `"}`
	if _, err := w.Write([]byte(response)); err != nil {
		log.Printf("Failed to write auth error response: %v", err)
	}
}
