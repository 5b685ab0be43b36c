package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/identity"
	"github.com/YogindraChaudhari/Product-Advisor/services"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// ErrOwnerMismatch is returned when the authenticated user acts on another user's data
var ErrOwnerMismatch = errors.New("user_id does not match the authenticated user")

// TokenValidator defines the interface for validating access tokens
type TokenValidator interface {
	// ValidateToken validates a token and returns claims
	ValidateToken(ctx context.Context, token string) (*identity.ParsedClaims, error)
}

// ErrorHandler writes the response for a rejected request
type ErrorHandler func(w http.ResponseWriter, err error, logger *zap.Logger)

// AuthMiddleware provides authentication middleware functionality.
// With a nil validator authentication is disabled and every request passes
type AuthMiddleware struct {
	validator TokenValidator
	onError   ErrorHandler
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		validator: validator,
		onError:   writeUnauthorized,
		logger:    logger,
	}
}

// WithErrorHandler replaces the writer used for rejected requests
func (m *AuthMiddleware) WithErrorHandler(h ErrorHandler) *AuthMiddleware {
	if h != nil {
		m.onError = h
	}
	return m
}

func writeUnauthorized(w http.ResponseWriter, err error, _ *zap.Logger) {
	_ = utils.WriteUnauthorized(w, services.GetErrorMessage(err, "Unauthorized"))
}

// accessTokenCookieName is the cookie the Supabase client helpers set
const accessTokenCookieName = "sb-access-token"

// Enabled reports whether tokens are checked
func (m *AuthMiddleware) Enabled() bool {
	return m.validator != nil
}

// RequireAuth is a middleware that requires a valid access token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			m.onError(w, services.ErrUnauthorized, m.logger)
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			m.onError(w, services.NewDomainError(services.ErrorTypeUnauthorized, "Invalid or expired token", err), m.logger)
			return
		}

		ctx = WithClaims(ctx, claims)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", claims.UserID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckOwner verifies that userID belongs to the authenticated user.
// Without claims in the context (authentication disabled) any user id is accepted
func CheckOwner(ctx context.Context, userID string) error {
	claims := GetClaimsFromContext(ctx)
	if claims == nil {
		return nil
	}
	if claims.UserID != userID {
		return ErrOwnerMismatch
	}
	return nil
}

// extractToken extracts the token from the Authorization header ("Bearer TOKEN")
// or the sb-access-token cookie. The header takes precedence
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(accessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
