package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/api/response"
	"github.com/Rrens/shop-assistant/internal/security"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
	UserRoleKey  contextKey = "userRole"
)

const roleAdmin = "admin"

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the bearer token and puts the caller into the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.jwtManager.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := WithUser(r.Context(), claims.UserID, claims.Email, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers without the admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(UserRoleKey).(string); role != roleAdmin {
			response.Forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores the authenticated caller in ctx
func WithUser(ctx context.Context, userID, email, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	return context.WithValue(ctx, UserRoleKey, role)
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// Limiter counts requests per key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter Limiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting based on user ID
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), userID)
		if err != nil {
			// fail open
			log.Warn().Err(err).Str("user_id", userID).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(time.Until(resetTime).Seconds()))))
			response.TooManyRequests(w, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
