// Package registry holds the process-wide mapping from tenant identity to
// that tenant's database connection parameters. It is warmed once at
// startup and refreshed on every successful tenant write; entries are
// never removed, so soft-deleted tenants keep their descriptor.
package registry

import (
	"sync"

	"github.com/courseforge/courseforge/internal/domain"
)

type Registry struct {
	mu      sync.RWMutex
	configs map[string]domain.DatabaseConfig
}

func New() *Registry {
	return &Registry{configs: make(map[string]domain.DatabaseConfig)}
}

// Upsert inserts or overwrites the descriptor for the given key. The key is
// a tenant identifier, or the master database's own name for the reserved
// master entry.
func (r *Registry) Upsert(key string, cfg domain.DatabaseConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[key] = cfg
}

// Lookup returns the descriptor for the given key. It never touches the
// durable store.
func (r *Registry) Lookup(key string) (domain.DatabaseConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[key]
	return cfg, ok
}

// Len reports how many entries are cached.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}
