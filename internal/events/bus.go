// Package events provides the in-process notification bus the tenant
// manager publishes lifecycle events on.
package events

import (
	"sync"

	"github.com/courseforge/courseforge/internal/domain"
)

// TenantCreatedHandler receives the full record of a newly created tenant.
type TenantCreatedHandler func(t *domain.Tenant)

type Bus struct {
	mu            sync.RWMutex
	tenantCreated []TenantCreatedHandler
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeTenantCreated registers a handler. Handlers run synchronously,
// in subscription order, on the publishing goroutine.
func (b *Bus) SubscribeTenantCreated(h TenantCreatedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tenantCreated = append(b.tenantCreated, h)
}

// PublishTenantCreated notifies every subscriber.
func (b *Bus) PublishTenantCreated(t *domain.Tenant) {
	b.mu.RLock()
	handlers := make([]TenantCreatedHandler, len(b.tenantCreated))
	copy(handlers, b.tenantCreated)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(t)
	}
}
