package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned when the identity service has no such user
var ErrUserNotFound = errors.New("identity user not found")

// AdminConfig holds configuration for AdminClient
type AdminConfig struct {
	SupabaseURL    string
	ServiceRoleKey string
	HTTPTimeout    time.Duration
	// TreatMissingAsDeleted makes DeleteUser succeed when the user is already gone
	TreatMissingAsDeleted bool
}

// AdminClient calls the Supabase auth admin API with the service role key
type AdminClient struct {
	client    auth.Client
	missingOK bool
	logger    *zap.Logger
}

// APIError is a non-2xx answer from the admin API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity admin api returned %d: %s", e.StatusCode, e.Message)
}

// NewAdminClient creates an admin client
func NewAdminClient(cfg AdminConfig, logger *zap.Logger) (*AdminClient, error) {
	if cfg.SupabaseURL == "" || cfg.ServiceRoleKey == "" {
		return nil, errors.New("supabase url and service role key are required")
	}
	if _, err := url.Parse(cfg.SupabaseURL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// The project reference is unused once a custom auth URL is set
	client := auth.New("", cfg.ServiceRoleKey).
		WithCustomAuthURL(strings.TrimRight(cfg.SupabaseURL, "/") + "/auth/v1").
		WithClient(http.Client{Timeout: cfg.HTTPTimeout}).
		WithToken(cfg.ServiceRoleKey)

	return &AdminClient{
		client:    client,
		missingOK: cfg.TreatMissingAsDeleted,
		logger:    logger,
	}, nil
}

// DeleteUser removes the user from the identity service.
// Supabase user ids are UUIDs; anything else is rejected before a request is made
func (c *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid identity user id %q: %w", userID, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = c.client.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id})
	if err == nil {
		c.logger.Info("identity user deleted", zap.String("user_id", userID))
		return nil
	}

	apiErr := asAPIError(err)
	if apiErr == nil {
		return fmt.Errorf("identity admin request failed: %w", err)
	}
	if apiErr.StatusCode == http.StatusNotFound {
		if c.missingOK {
			c.logger.Warn("identity user already absent", zap.String("user_id", userID))
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUserNotFound, apiErr)
	}
	return apiErr
}

var statusPattern = regexp.MustCompile(`status code (\d{3})(?::\s*(.*))?`)

// asAPIError recovers the HTTP status from an auth-go error, nil for transport failures
func asAPIError(err error) *APIError {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return nil
	}
	status, _ := strconv.Atoi(m[1])

	msg := strings.TrimSpace(m[2])
	if msg == "" {
		msg = "no response body"
	}
	return &APIError{StatusCode: status, Message: msg}
}
