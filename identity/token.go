// Package identity talks to the Supabase identity service: it validates the
// access tokens Supabase issues and removes users through the admin API
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is malformed or its signature does not verify
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is not the configured project
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrInvalidAudience is returned when the token audience is not "authenticated"
	ErrInvalidAudience = errors.New("invalid audience")

	// ErrMissingSubject is returned when the token carries no user id
	ErrMissingSubject = errors.New("missing sub claim")
)

// Audience is the audience Supabase puts on tokens of signed-in users
const Audience = "authenticated"

// Claims represents the claims of a Supabase access token
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ParsedClaims represents validated claims
type ParsedClaims struct {
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenValidator validates HS256 access tokens signed with the project JWT secret
type TokenValidator struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// TokenConfig holds configuration for TokenValidator
type TokenConfig struct {
	// SupabaseURL is the project URL; tokens are expected from {SupabaseURL}/auth/v1.
	// An empty URL disables the issuer check
	SupabaseURL string
	JWTSecret   string
	Leeway      time.Duration
}

// NewTokenValidator creates a validator, it fails without a secret
func NewTokenValidator(cfg TokenConfig) (*TokenValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	var issuer string
	if cfg.SupabaseURL != "" {
		issuer = strings.TrimRight(cfg.SupabaseURL, "/") + "/auth/v1"
	}

	return &TokenValidator{
		secret: []byte(cfg.JWTSecret),
		issuer: issuer,
		leeway: cfg.Leeway,
	}, nil
}

// Issuer returns the expected token issuer, empty when not checked
func (v *TokenValidator) Issuer() string {
	return v.issuer
}

// ValidateToken validates a token and returns its claims
func (v *TokenValidator) ValidateToken(_ context.Context, tokenString string) (*ParsedClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidIssuer, v.issuer, claims.Issuer)
	}

	if !containsAudience(claims.Audience, Audience) {
		return nil, ErrInvalidAudience
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	parsed := &ParsedClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

func containsAudience(audiences jwt.ClaimStrings, want string) bool {
	for _, aud := range audiences {
		if aud == want {
			return true
		}
	}
	return false
}
