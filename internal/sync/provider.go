// Package sync pushes logged entries to an external health store and
// keeps the record of what has already been pushed. Providers are
// plugins; no provider-specific logic lives in the service.
package sync

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hydrolog/hydrolog/internal/model"
)

// HealthState represents provider availability. Observational only; the
// service still attempts a push regardless of the reported state.
type HealthState string

const (
	HealthStateHealthy     HealthState = "healthy"
	HealthStateDegraded    HealthState = "degraded"
	HealthStateUnavailable HealthState = "unavailable"
)

// Provider is one external health store. Push is the opaque operation
// the core consumes: given an entry it returns the external record id,
// or fails.
type Provider interface {
	// ID returns the unique identifier for this provider instance.
	ID() string

	// DisplayName returns a human-readable name.
	DisplayName() string

	// Push writes one entry to the external store and returns the
	// external record identifier.
	Push(ctx context.Context, entry model.Entry) (string, error)

	// CheckHealth returns the current health state.
	CheckHealth(ctx context.Context) HealthState
}

// Registry manages provider instances. The first registered provider
// becomes primary unless SetPrimary is called.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a new provider.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.ID()]; exists {
		return fmt.Errorf("provider %q already registered", p.ID())
	}
	r.providers[p.ID()] = p

	if r.primary == "" {
		r.primary = p.ID()
	}
	return nil
}

// Get returns the provider with the given id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	return p, ok
}

// All returns every registered provider, ordered by id.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Primary returns the primary provider, or nil when none is registered.
func (r *Registry) Primary() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.providers[r.primary]
}

// SetPrimary selects the primary provider.
func (r *Registry) SetPrimary(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return fmt.Errorf("provider %q not registered", id)
	}
	r.primary = id
	return nil
}
