// Package providertest provides a scriptable providers.Provider for tests
package providertest

import (
	"context"
	"sync"

	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

// Fake is a providers.Provider that returns a fixed reply or error and counts calls
type Fake struct {
	name  providers.Name
	model string

	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []string
}

// New creates a fake that replies with reply
func New(name providers.Name, reply string) *Fake {
	return &Fake{name: name, model: "fake-" + string(name), reply: reply}
}

// Failing creates a fake that always fails with err
func Failing(name providers.Name, err error) *Fake {
	return &Fake{name: name, model: "fake-" + string(name), err: err}
}

// Blocking creates a fake that waits until its context is done
func Blocking(name providers.Name) *Fake {
	return &Fake{name: name, model: "fake-" + string(name), block: true}
}

func (f *Fake) Name() providers.Name { return f.name }

func (f *Fake) Model() string { return f.model }

func (f *Fake) Invoke(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	reply, err, block := f.reply, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", providers.AsProviderError(f.name, ctx.Err())
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

// Calls returns how many times Invoke ran
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Prompts returns the prompts received so far
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Registry builds a registry holding fakes with the given auto priority
func Registry(priority []providers.Name, fakes ...*Fake) (*providers.Registry, error) {
	r := providers.NewRegistry()
	for _, f := range fakes {
		if err := r.RegisterProvider(f); err != nil {
			return nil, err
		}
	}
	if err := r.SetPriority(priority); err != nil {
		return nil, err
	}
	return r, nil
}
