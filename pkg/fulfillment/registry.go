package fulfillment

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered fulfillment providers.
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// All returns all registered providers.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result
}

// Names returns the names of all registered providers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// ProviderOptions pairs a provider name with its option catalog.
type ProviderOptions struct {
	Provider string   `json:"provider"`
	Options  []Option `json:"options"`
}

// AllOptions collects the option catalogs of all registered providers in
// parallel. Errors from individual providers are returned alongside the
// successful results and don't fail the entire request.
func (r *Registry) AllOptions(ctx context.Context) ([]ProviderOptions, []error) {
	providers := r.All()
	if len(providers) == 0 {
		return nil, []error{ErrProviderNotFound}
	}

	results := make([]ProviderOptions, 0, len(providers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, p := range providers {
		p := p
		g.Go(func() error {
			opts, err := p.FulfillmentOptions(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return nil // keep collecting from the other providers
			}
			results = append(results, ProviderOptions{Provider: p.Name(), Options: opts})
			return nil
		})
	}

	g.Wait()
	return results, errs
}

// ProviderQuote pairs a provider name with a price quote.
type ProviderQuote struct {
	Provider string      `json:"provider"`
	Quote    *PriceQuote `json:"quote"`
}

// QuoteAll computes price quotes from all registered providers in parallel
// for the same option payload and context.
func (r *Registry) QuoteAll(ctx context.Context, payload map[string]any, data map[string]any, pctx *PriceContext) ([]ProviderQuote, []error) {
	providers := r.All()
	if len(providers) == 0 {
		return nil, []error{ErrProviderNotFound}
	}

	results := make([]ProviderQuote, 0, len(providers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, p := range providers {
		p := p
		g.Go(func() error {
			quote, err := p.CalculatePrice(ctx, payload, data, pctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return nil
			}
			results = append(results, ProviderQuote{Provider: p.Name(), Quote: quote})
			return nil
		})
	}

	g.Wait()
	return results, errs
}
