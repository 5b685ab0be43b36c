package advice

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/internal/observability"
	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/repositories"
	"github.com/YogindraChaudhari/Product-Advisor/services"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// Router routes a validated request to a provider
type Router interface {
	Route(ctx context.Context, req routing.Request) (*routing.Result, error)
}

// IdentityAdmin removes users from the external identity service
type IdentityAdmin interface {
	DeleteUser(ctx context.Context, userID string) error
}

// Service implements the advice use cases on top of the router and the store
type Service struct {
	validator *Validator
	router    Router
	advices   repositories.AdviceRepository
	txManager repositories.TransactionManager
	identity  IdentityAdmin
	logger    *zap.Logger
}

// NewService creates a new advice service. identity may be nil
func NewService(
	validator *Validator,
	router Router,
	advices repositories.AdviceRepository,
	txManager repositories.TransactionManager,
	identity IdentityAdmin,
	logger *zap.Logger,
) *Service {
	if validator == nil {
		validator = NewValidator("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		validator: validator,
		router:    router,
		advices:   advices,
		txManager: txManager,
		identity:  identity,
		logger:    logger,
	}
}

// Generate validates the input, routes it and returns the persisted result
func (s *Service) Generate(ctx context.Context, in Input) (*routing.Result, error) {
	logger := observability.FromContext(ctx, s.logger)

	logger.Debug("step 1: validating advice request")
	req, err := s.validator.Validate(in)
	if err != nil {
		return nil, validationError(err)
	}

	logger.Debug("step 2: routing advice request", zap.String("selector", req.ProviderSelector))
	result, err := s.router.Route(ctx, req)
	if err != nil {
		return nil, translateRouteError(err)
	}

	logger.Info("advice generated",
		zap.String("id", result.PersistedID),
		zap.String("provider", string(result.ProviderUsed)),
		zap.Int("fallbacks", len(result.Fallbacks)))

	return result, nil
}

// History returns the user's advices, newest first
func (s *Service) History(ctx context.Context, userID string) ([]*models.Advice, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationError(utils.NewMissingFieldsError("user_id"))
	}

	advices, err := s.advices.ListByOwner(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to fetch history", err)
	}
	return advices, nil
}

// Delete removes one advice owned by userID
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	if missing := missingFields(id, userID); len(missing) > 0 {
		return validationError(utils.NewMissingFieldsError(missing...))
	}

	if err := s.advices.DeleteByIDAndOwner(ctx, id, userID); err != nil {
		return storeError("failed to delete advice", err)
	}

	observability.FromContext(ctx, s.logger).Info("advice deleted", zap.String("id", id.String()))
	return nil
}

// Rename changes the title of one advice owned by userID
func (s *Service) Rename(ctx context.Context, id uuid.UUID, userID, title string) error {
	missing := missingFields(id, userID)
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return validationError(utils.NewMissingFieldsError(missing...))
	}

	if err := s.advices.UpdateTitle(ctx, id, userID, title); err != nil {
		return storeError("failed to update title", err)
	}
	return nil
}

// DeleteAccount removes every advice of the user and then the identity-service user.
// Row deletion is rolled back when the identity deletion fails
func (s *Service) DeleteAccount(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, validationError(utils.NewMissingFieldsError("user_id"))
	}

	logger := observability.FromContext(ctx, s.logger)

	deleted, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context) (int64, error) {
		n, err := s.advices.DeleteAllByOwner(ctx, userID)
		if err != nil {
			return 0, services.WrapInternal("failed to delete user advices", err)
		}

		if s.identity == nil {
			logger.Warn("identity admin not configured, skipping identity user deletion")
			return n, nil
		}

		if err := s.identity.DeleteUser(ctx, userID); err != nil {
			return 0, services.WrapExternal("failed to delete identity user", err)
		}
		return n, nil
	})
	if err != nil {
		var domainErr *services.DomainError
		if errors.As(err, &domainErr) {
			return 0, err
		}
		return 0, services.WrapInternal("failed to delete account", err)
	}

	logger.Info("account deleted", zap.Int64("advices_deleted", deleted))
	return deleted, nil
}

func missingFields(id uuid.UUID, userID string) []string {
	var missing []string
	if id == uuid.Nil {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(userID) == "" {
		missing = append(missing, "user_id")
	}
	return missing
}

func validationError(err error) error {
	var vErr *utils.ValidationError
	if !errors.As(err, &vErr) {
		return services.NewDomainError(services.ErrorTypeValidation, "invalid request", err)
	}

	return services.NewDomainError(services.ErrorTypeValidation, "Missing required fields", err).
		WithDetail("missing_fields", vErr.MissingFields()).
		WithDetail("fields", vErr.Fields)
}

func storeError(message string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.NewDomainError(services.ErrorTypeNotFound, services.ErrAdviceNotFound.Message, err)
	}
	return services.WrapInternal(message, err)
}

// translateRouteError maps router failures onto the service error taxonomy
func translateRouteError(err error) error {
	var cfgErr *routing.ConfigurationError
	if errors.As(err, &cfgErr) {
		return services.NewDomainError(services.ErrorTypeConfiguration, "Unknown or unconfigured provider", err).
			WithDetail("provider", cfgErr.Selector)
	}

	var routerErr *routing.RouterError
	if errors.As(err, &routerErr) {
		return services.NewDomainError(services.ErrorTypeGeneration, "All providers failed", err).
			WithDetail("failures", routerErr.Failures)
	}

	var storageErr *routing.StorageError
	if errors.As(err, &storageErr) {
		return services.NewDomainError(services.ErrorTypeStorage, "Advice generated but not saved", err).
			WithDetail("result", storageErr.Result.Text).
			WithDetail("provider", string(storageErr.Result.ProviderUsed))
	}

	return services.WrapInternal("failed to generate advice", err)
}
