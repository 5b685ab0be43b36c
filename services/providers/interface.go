package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Name identifies a concrete upstream LLM provider.
// The set is closed: every value must appear in Names()
type Name string

const (
	// OpenAI is the OpenAI chat completions API
	OpenAI Name = "openai"

	// Gemini is the Google Generative Language API
	Gemini Name = "gemini"
)

// Auto is the meta selector that tries every configured provider in priority order
const Auto = "auto"

// Names returns every concrete provider in declaration order
func Names() []Name {
	return []Name{OpenAI, Gemini}
}

// String implements fmt.Stringer
func (n Name) String() string {
	return string(n)
}

// Valid reports whether n is one of the known providers
func (n Name) Valid() bool {
	switch n {
	case OpenAI, Gemini:
		return true
	}
	return false
}

// ParseName converts a selector into a concrete provider name.
// It is case-insensitive and ignores surrounding whitespace. "auto" is not a Name
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if !n.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return n, nil
}

// Provider is the uniform contract every upstream adapter implements.
// Implementations must be safe for concurrent use and must not retry internally
type Provider interface {
	// Name returns the logical provider name
	Name() Name

	// Model returns the upstream model identifier the adapter sends prompts to
	Model() string

	// Invoke sends a single prompt and returns the generated text.
	// Failures are returned as *ProviderError
	Invoke(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig holds the settings an adapter is built from
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// Model overrides the adapter default model
	Model string

	// BaseURL overrides the upstream endpoint (tests, proxies)
	BaseURL string

	// Timeout bounds a single upstream call
	Timeout time.Duration
}

// DefaultProviderConfig returns the baseline configuration for an adapter
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout: 60 * time.Second,
	}
}
