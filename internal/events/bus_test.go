package events

import (
	"testing"

	"github.com/courseforge/courseforge/internal/domain"
)

func TestPublishTenantCreated(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.SubscribeTenantCreated(func(*domain.Tenant) { order = append(order, 1) })
	bus.SubscribeTenantCreated(func(*domain.Tenant) { order = append(order, 2) })

	bus.PublishTenantCreated(&domain.Tenant{Name: "acme"})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected handlers to run in subscription order, got %v", order)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic.
	bus.PublishTenantCreated(&domain.Tenant{Name: "acme"})
}
