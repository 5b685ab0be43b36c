package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/config"
	"github.com/YogindraChaudhari/Product-Advisor/handlers"
	"github.com/YogindraChaudhari/Product-Advisor/identity"
	"github.com/YogindraChaudhari/Product-Advisor/internal/observability"
	"github.com/YogindraChaudhari/Product-Advisor/middleware"
	"github.com/YogindraChaudhari/Product-Advisor/repositories"
	"github.com/YogindraChaudhari/Product-Advisor/repositories/postgres"
	"github.com/YogindraChaudhari/Product-Advisor/services/advice"
	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
	"github.com/YogindraChaudhari/Product-Advisor/services/providers/gemini"
	"github.com/YogindraChaudhari/Product-Advisor/services/providers/openai"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Advices   repositories.AdviceRepository
	TxManager repositories.TransactionManager

	// Providers and routing
	ProviderRegistry *providers.Registry
	ProviderStats    *observability.AttemptStats
	Router           *routing.FallbackRouter

	// Services
	AdviceService *advice.Service

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
	IdentityAdmin  *identity.AdminClient

	closers []io.Closer
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires everything on top of an existing repository factory
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initProviders(ctx); err != nil {
		deps.closeProviders()
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := deps.initAuth(); err != nil {
		deps.closeProviders()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase creates the schema when auto-migration is enabled
func (d *Dependencies) initDatabase(ctx context.Context) error {
	if !d.Config.Database.AutoMigrate {
		return nil
	}

	if err := d.RepoFactory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database schema ready")
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Advices = repos.Advices
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initProviders builds an adapter for every provider with an API key
func (d *Dependencies) initProviders(ctx context.Context) error {
	builder := providers.NewRegistryBuilder().
		WithProviderBuilder(providers.OpenAI, func(cfg providers.ProviderConfig) (providers.Provider, error) {
			return openai.NewAdapter(cfg)
		}).
		WithProviderBuilder(providers.Gemini, func(cfg providers.ProviderConfig) (providers.Provider, error) {
			adapter, err := gemini.NewAdapter(ctx, cfg)
			if err != nil {
				return nil, err
			}
			d.closers = append(d.closers, adapter)
			return adapter, nil
		}).
		WithPriority(d.Config.Providers.AutoPlan()...)

	registry, err := builder.Build(d.Config.Providers.ProviderConfigs())
	if err != nil {
		return err
	}

	for _, name := range registry.ListProviders() {
		p, _ := registry.GetProvider(name)
		d.Logger.Info("registered provider",
			zap.String("provider", string(name)),
			zap.String("model", p.Model()))
	}

	if registry.GetProviderCount() == 0 {
		d.Logger.Warn("no LLM providers configured")
	}

	d.ProviderRegistry = registry
	d.ProviderStats = observability.NewAttemptStats()
	return nil
}

// initAuth sets up token validation and the identity admin client.
// Both are optional and disabled when their credentials are missing
func (d *Dependencies) initAuth() error {
	cfg := d.Config

	if cfg.AuthEnabled() {
		validator, err := identity.NewTokenValidator(identity.TokenConfig{
			SupabaseURL: cfg.Supabase.URL,
			JWTSecret:   cfg.Supabase.JWTSecret,
		})
		if err != nil {
			return err
		}
		d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger).
			WithErrorHandler(handlers.HandleServiceError)
		d.Logger.Info("token authentication enabled", zap.String("issuer", validator.Issuer()))
	} else {
		d.AuthMiddleware = middleware.NewAuthMiddleware(nil, d.Logger)
		d.Logger.Warn("SUPABASE_JWT_SECRET not set, API runs without authentication")
	}

	if cfg.IdentityAdminEnabled() {
		admin, err := identity.NewAdminClient(identity.AdminConfig{
			SupabaseURL:           cfg.Supabase.URL,
			ServiceRoleKey:        cfg.Supabase.ServiceRoleKey,
			TreatMissingAsDeleted: cfg.Supabase.TreatMissingAsDeleted,
		}, d.Logger)
		if err != nil {
			return err
		}
		d.IdentityAdmin = admin
	} else {
		d.Logger.Warn("supabase admin credentials not set, account deletion keeps identity users")
	}

	return nil
}

// initServices wires the router and the advice service
func (d *Dependencies) initServices() {
	d.Router = routing.NewFallbackRouter(
		d.ProviderRegistry,
		advice.NewStoreRecorder(d.Advices),
		d.ProviderStats,
		routing.Config{CandidateTimeout: d.Config.Providers.Timeout},
		d.Logger,
	)

	// A nil *AdminClient must not become a non-nil interface
	var identityAdmin advice.IdentityAdmin
	if d.IdentityAdmin != nil {
		identityAdmin = d.IdentityAdmin
	}

	d.AdviceService = advice.NewService(
		advice.NewValidator(d.Config.Providers.DefaultProvider),
		d.Router,
		d.Advices,
		d.TxManager,
		identityAdmin,
		d.Logger,
	)
}

func (d *Dependencies) closeProviders() []error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errs
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	errs := d.closeProviders()

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
