package routing

import (
	"fmt"
	"strings"

	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

// Failure is one candidate's failed attempt
type Failure struct {
	Provider  providers.Name `json:"provider"`
	Code      string         `json:"code"`
	Reason    string         `json:"reason"`
	Transient bool           `json:"transient"`
}

func newFailure(name providers.Name, err error) Failure {
	provErr := providers.AsProviderError(name, err)

	reason := provErr.Message
	if provErr.Cause != nil {
		reason += ": " + provErr.Cause.Error()
	}

	return Failure{
		Provider:  name,
		Code:      provErr.Code,
		Reason:    reason,
		Transient: provErr.Transient,
	}
}

// ConfigurationError is returned when the selector cannot be resolved to a plan
type ConfigurationError struct {
	Selector string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cannot route provider %q: %v", e.Selector, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RouterError is returned when every candidate of the plan failed.
// Failures are in plan order
type RouterError struct {
	Failures []Failure
}

func (e *RouterError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %s", f.Provider, f.Reason)
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Providers returns the failed providers in plan order
func (e *RouterError) Providers() []providers.Name {
	out := make([]providers.Name, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Provider
	}
	return out
}

// StorageError is returned when generation succeeded but the recorder failed.
// Result holds the generated answer without a persisted id
type StorageError struct {
	Result Result
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("advice generated by %s but not saved: %v", e.Result.ProviderUsed, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
