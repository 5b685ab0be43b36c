package routing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/internal/observability"
	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

// Request is a validated advice request
type Request struct {
	Prompt           string
	RequesterID      string
	Title            string
	ProviderSelector string
}

// Result is the outcome of a successful route.
// Fallbacks lists the candidates that failed before ProviderUsed answered
type Result struct {
	Text         string
	ProviderUsed providers.Name
	PersistedID  string
	Fallbacks    []Failure
}

// Record is what gets persisted for a successful request
type Record struct {
	Prompt      string
	Result      string
	RequesterID string
	Title       string
	Provider    providers.Name
}

// Recorder persists a successful result and returns its id
type Recorder interface {
	Save(ctx context.Context, record Record) (string, error)
}

// Resolver resolves selectors to plans and plan entries to adapters.
// *providers.Registry implements it
type Resolver interface {
	Resolve(selector string) (providers.Plan, error)
	GetProvider(name providers.Name) (providers.Provider, error)
}

// Config holds router settings
type Config struct {
	// CandidateTimeout bounds each candidate call; zero means no extra bound
	CandidateTimeout time.Duration
}

// DefaultConfig returns the default router configuration
func DefaultConfig() Config {
	return Config{CandidateTimeout: 60 * time.Second}
}

// FallbackRouter tries the candidates of a plan in order until one succeeds.
// It keeps no per-request state and is safe for concurrent use
type FallbackRouter struct {
	resolver Resolver
	recorder Recorder
	metrics  observability.Metrics
	config   Config
	logger   *zap.Logger
}

// NewFallbackRouter creates a new router
func NewFallbackRouter(resolver Resolver, recorder Recorder, metrics observability.Metrics, config Config, logger *zap.Logger) *FallbackRouter {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackRouter{
		resolver: resolver,
		recorder: recorder,
		metrics:  metrics,
		config:   config,
		logger:   logger,
	}
}

// Route resolves the plan, invokes candidates sequentially and records the first success.
// It returns *ConfigurationError, *RouterError or *StorageError on failure, and the
// context error when the caller goes away mid-plan
func (r *FallbackRouter) Route(ctx context.Context, req Request) (*Result, error) {
	logger := observability.FromContext(ctx, r.logger)

	plan, err := r.resolver.Resolve(req.ProviderSelector)
	if err != nil {
		logger.Error("provider selector could not be resolved",
			zap.String("selector", req.ProviderSelector),
			zap.Error(err))
		return nil, &ConfigurationError{Selector: req.ProviderSelector, Err: err}
	}

	logger.Debug("routing request",
		zap.String("selector", req.ProviderSelector),
		zap.Strings("plan", plan.Strings()))

	var failures []Failure
	for i, name := range plan {
		// A caller that went away is not a provider failure
		if ctx.Err() != nil {
			return nil, canceled(logger, ctx.Err(), i, len(plan))
		}

		text, err := r.attempt(ctx, name, req.Prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, canceled(logger, ctx.Err(), i, len(plan))
			}
			failure := newFailure(name, err)
			failures = append(failures, failure)

			logger.Warn("provider failed, trying next",
				zap.String("provider", string(name)),
				zap.Int("attempt", i+1),
				zap.Int("remaining", len(plan)-i-1),
				zap.String("code", failure.Code),
				zap.Bool("transient", failure.Transient),
				zap.Error(err))
			continue
		}

		if len(failures) > 0 {
			logger.Info("request served after fallback",
				zap.String("provider", string(name)),
				zap.Int("failed_candidates", len(failures)))
		}

		return r.record(ctx, req, name, text, failures)
	}

	logger.Error("all providers failed",
		zap.String("selector", req.ProviderSelector),
		zap.Int("candidates", len(plan)))

	return nil, &RouterError{Failures: failures}
}

func canceled(logger *zap.Logger, err error, done, total int) error {
	logger.Warn("request canceled before a candidate answered",
		zap.Int("completed", done),
		zap.Int("candidates", total),
		zap.Error(err))
	return fmt.Errorf("route canceled after %d of %d candidates: %w", done, total, err)
}

func (r *FallbackRouter) attempt(ctx context.Context, name providers.Name, prompt string) (string, error) {
	provider, err := r.resolver.GetProvider(name)
	if err != nil {
		return "", providers.NewProviderError(name, providers.CodeUnknown, "adapter unavailable", 0, false, err)
	}

	callCtx := ctx
	if r.config.CandidateTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.CandidateTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := provider.Invoke(callCtx, prompt)
	latency := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		r.metrics.RecordAttempt(string(name), observability.OutcomeFailure, latency)
		return "", providers.AsProviderError(name, err)
	}

	r.metrics.RecordAttempt(string(name), observability.OutcomeSuccess, latency)
	return text, nil
}

func (r *FallbackRouter) record(ctx context.Context, req Request, name providers.Name, text string, failures []Failure) (*Result, error) {
	result := Result{
		Text:         text,
		ProviderUsed: name,
		Fallbacks:    failures,
	}

	id, err := r.recorder.Save(ctx, Record{
		Prompt:      req.Prompt,
		Result:      text,
		RequesterID: req.RequesterID,
		Title:       req.Title,
		Provider:    name,
	})
	if err != nil {
		observability.FromContext(ctx, r.logger).Error("failed to record advice",
			zap.String("provider", string(name)),
			zap.Error(err))
		return nil, &StorageError{Result: result, Err: err}
	}

	result.PersistedID = id
	return &result, nil
}
