package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/internal/observability"
	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// ProviderCatalog exposes the configured providers. *providers.Registry implements it
type ProviderCatalog interface {
	ListProviders() []providers.Name
	Priority() []providers.Name
	GetProvider(name providers.Name) (providers.Provider, error)
}

// StatsSource exposes per-provider attempt counters
type StatsSource interface {
	Snapshot() []observability.ProviderStats
}

// ProviderInfo describes one configured provider
type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// ProvidersResponse is the body of GET /api/providers
type ProvidersResponse struct {
	Providers       []ProviderInfo                `json:"providers"`
	DefaultProvider string                        `json:"default_provider"`
	AutoOrder       []string                      `json:"auto_order"`
	Stats           []observability.ProviderStats `json:"stats"`
}

// ProvidersHandler reports provider configuration and runtime counters
type ProvidersHandler struct {
	catalog         ProviderCatalog
	stats           StatsSource
	defaultProvider string
	logger          *zap.Logger
}

// NewProvidersHandler creates a new ProvidersHandler. stats may be nil
func NewProvidersHandler(catalog ProviderCatalog, stats StatsSource, defaultProvider string, logger *zap.Logger) *ProvidersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvidersHandler{
		catalog:         catalog,
		stats:           stats,
		defaultProvider: defaultProvider,
		logger:          logger,
	}
}

// HandleList handles GET /api/providers
func (h *ProvidersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	response := ProvidersResponse{
		Providers:       []ProviderInfo{},
		DefaultProvider: h.defaultProvider,
		AutoOrder:       providers.Plan(h.catalog.Priority()).Strings(),
		Stats:           []observability.ProviderStats{},
	}

	for _, name := range h.catalog.ListProviders() {
		p, err := h.catalog.GetProvider(name)
		if err != nil {
			continue
		}
		response.Providers = append(response.Providers, ProviderInfo{Name: string(name), Model: p.Model()})
	}

	if h.stats != nil {
		if snapshot := h.stats.Snapshot(); snapshot != nil {
			response.Stats = snapshot
		}
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write providers response", zap.Error(err))
	}
}
