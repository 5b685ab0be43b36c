package providers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Plan is the ordered list of providers to attempt for one request
type Plan []Name

// Strings returns the plan as plain strings, mostly for logging
func (p Plan) Strings() []string {
	out := make([]string, len(p))
	for i, n := range p {
		out[i] = string(n)
	}
	return out
}

// Registry maps provider names to adapters and owns the auto priority order.
// It is populated at startup and only read afterwards
type Registry struct {
	mu        sync.RWMutex
	providers map[Name]Provider
	priority  []Name
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[Name]Provider),
	}
}

// RegisterProvider registers a provider instance
func (r *Registry) RegisterProvider(provider Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	name := provider.Name()
	if !name.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, name)
	}

	r.providers[name] = provider
	return nil
}

// SetPriority sets the order used for the auto selector.
// Every entry must be registered and appear once
func (r *Registry) SetPriority(order []Name) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[Name]bool, len(order))
	for _, n := range order {
		if !n.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownProvider, n)
		}
		if _, ok := r.providers[n]; !ok {
			return fmt.Errorf("%w: %s", ErrProviderNotConfigured, n)
		}
		if seen[n] {
			return fmt.Errorf("duplicate provider in priority order: %s", n)
		}
		seen[n] = true
	}

	r.priority = append([]Name(nil), order...)
	return nil
}

// Priority returns a copy of the auto priority order
func (r *Registry) Priority() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Name(nil), r.priority...)
}

// Resolve turns a selector into a fallback plan.
// A concrete provider yields a single entry, "auto" yields the priority order,
// anything else fails with ErrUnknownProvider or ErrProviderNotConfigured
func (r *Registry) Resolve(selector string) (Plan, error) {
	sel := strings.ToLower(strings.TrimSpace(selector))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if sel == Auto {
		if len(r.priority) == 0 {
			return nil, fmt.Errorf("%w: no providers configured for %q", ErrProviderNotConfigured, Auto)
		}
		return append(Plan(nil), r.priority...), nil
	}

	name, err := ParseName(sel)
	if err != nil {
		return nil, err
	}

	switch name {
	case OpenAI, Gemini:
		if _, ok := r.providers[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
		}
	}

	return Plan{name}, nil
}

// GetProvider retrieves a provider by name
func (r *Registry) GetProvider(name Name) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}

	return provider, nil
}

// ListProviders returns registered provider names in declaration order
func (r *Registry) ListProviders() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Name, 0, len(r.providers))
	for _, n := range Names() {
		if _, ok := r.providers[n]; ok {
			names = append(names, n)
		}
	}

	return names
}

// GetProviderCount returns the number of registered providers
func (r *Registry) GetProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// ProviderBuilder is a function that creates a provider instance
type ProviderBuilder func(config ProviderConfig) (Provider, error)

// RegistryBuilder helps build a registry from per-provider configuration
type RegistryBuilder struct {
	builders map[Name]ProviderBuilder
	priority []Name
}

// NewRegistryBuilder creates a new registry builder
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		builders: make(map[Name]ProviderBuilder),
	}
}

// WithProviderBuilder registers a provider builder
func (rb *RegistryBuilder) WithProviderBuilder(name Name, builder ProviderBuilder) *RegistryBuilder {
	rb.builders[name] = builder
	return rb
}

// WithPriority sets the auto priority order applied on Build
func (rb *RegistryBuilder) WithPriority(order ...Name) *RegistryBuilder {
	rb.priority = order
	return rb
}

// Build creates the configured providers and returns the registry.
// Providers without a config entry are skipped
func (rb *RegistryBuilder) Build(configs map[Name]ProviderConfig) (*Registry, error) {
	registry := NewRegistry()

	for _, name := range Names() {
		config, ok := configs[name]
		if !ok {
			continue
		}
		builder, exists := rb.builders[name]
		if !exists {
			return nil, fmt.Errorf("no builder for provider %s", name)
		}
		provider, err := builder(config)
		if err != nil {
			return nil, fmt.Errorf("failed to build provider %s: %w", name, err)
		}
		if err := registry.RegisterProvider(provider); err != nil {
			return nil, fmt.Errorf("failed to register provider %s: %w", name, err)
		}
	}

	if err := registry.SetPriority(rb.priority); err != nil {
		return nil, fmt.Errorf("invalid priority order: %w", err)
	}

	return registry, nil
}
