package catalog

import (
	"context"
	"errors"
	"sync"

	"cinestream/models"
)

// ErrNotFound is returned by GetByID when the provider does not know the
// requested external ID.
var ErrNotFound = errors.New("catalog: not found")

// Provider defines the interface that all catalog providers must implement.
// This abstraction lets the aggregation engine work with any source
// (torrent indexer, archival repository, static dataset) without
// provider-specific switch statements.
type Provider interface {
	// Name returns the provider identifier (e.g., "yts", "archive").
	Name() string

	// Search returns hits matching the query plus the provider's
	// approximate total match count.
	Search(ctx context.Context, query string, page, pageSize int) ([]models.ProviderHit, int, error)

	// Popular returns the provider's most popular hits plus the
	// approximate total count.
	Popular(ctx context.Context, page, pageSize int) ([]models.ProviderHit, int, error)

	// GetByID retrieves a single hit by its provider-scoped external ID.
	// Returns ErrNotFound when the provider does not know the ID.
	GetByID(ctx context.Context, externalID string) (*models.ProviderHit, error)
}

// Registry manages registered catalog providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry. Registration order is
// preserved and determines fan-out result ordering.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// All returns the registered providers in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}
