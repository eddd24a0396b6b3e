package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/courseforge/courseforge/internal/domain"
	"github.com/courseforge/courseforge/internal/events"
	"github.com/courseforge/courseforge/internal/registry"
	"go.uber.org/zap"
)

// tenantCollection is the collection tenant records live in, inside the
// master logical database.
const tenantCollection = "tenant"

var (
	// ErrTenantCreate indicates invalid input to Create.
	ErrTenantCreate = errors.New("tenant create error")

	// ErrDuplicateTenant indicates a tenant with the same name already exists.
	ErrDuplicateTenant = errors.New("tenant already exists")

	// ErrTenantNotFound indicates a query did not resolve to exactly one tenant.
	ErrTenantNotFound = errors.New("no matching tenant record found")
)

var dbNamePattern = regexp.MustCompile(`[^A-Za-z0-9-_]+`)

// sanitizeDBName derives a database name from a tenant name by stripping
// every character outside [A-Za-z0-9-_].
func sanitizeDBName(name string) string {
	return dbNamePattern.ReplaceAllString(name, "")
}

// Defaults supplies the connection parameters used when a tenant draft
// arrives without a database descriptor, and names the master database.
type Defaults struct {
	MasterDBName string
	DBHost       string
	DBUser       string
	DBPass       string
	DBPort       int
}

// TenantManager orchestrates the tenant lifecycle: create, retrieve,
// update and soft-delete of tenant records, filesystem provisioning for
// new tenants, and ownership of the registry cache mapping tenant identity
// to database connection parameters.
type TenantManager struct {
	store       domain.DocumentStore
	registry    *registry.Registry
	provisioner domain.WorkspaceProvisioner
	bus         *events.Bus
	defaults    Defaults
	logger      *zap.Logger
}

func NewTenantManager(
	store domain.DocumentStore,
	reg *registry.Registry,
	provisioner domain.WorkspaceProvisioner,
	bus *events.Bus,
	defaults Defaults,
	logger *zap.Logger,
) *TenantManager {
	return &TenantManager{
		store:       store,
		registry:    reg,
		provisioner: provisioner,
		bus:         bus,
		defaults:    defaults,
		logger:      logger,
	}
}

func (m *TenantManager) master(ctx context.Context) (domain.Database, error) {
	return m.store.Database(ctx, m.defaults.MasterDBName)
}

// Create validates and persists a new tenant, caches its database
// descriptor, provisions its filesystem workspace and publishes a
// tenant-created notification. Name uniqueness is checked before the
// write but is advisory only; two racing creates with the same name can
// both pass the check. A provisioning failure is returned to the caller
// without rolling back the persisted record.
func (m *TenantManager) Create(ctx context.Context, draft *domain.Tenant) (*domain.Tenant, error) {
	if draft == nil || draft.Name == "" {
		return nil, fmt.Errorf("%w: tenant name is required", ErrTenantCreate)
	}

	db, err := m.master(ctx)
	if err != nil {
		return nil, err
	}

	// Synthesize connection details if not supplied.
	if draft.Database == nil {
		draft.Database = &domain.DatabaseConfig{
			DBName: sanitizeDBName(draft.Name),
			DBHost: m.defaults.DBHost,
			DBUser: m.defaults.DBUser,
			DBPass: m.defaults.DBPass,
			DBPort: m.defaults.DBPort,
		}
	}

	existing, err := db.Retrieve(ctx, tenantCollection, domain.Query{"name": draft.Name}, nil)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateTenant
	}

	doc, err := draft.Document()
	if err != nil {
		return nil, err
	}

	created, err := db.Create(ctx, tenantCollection, doc)
	if err != nil {
		m.logger.Error("failed to create tenant",
			zap.String("name", draft.Name), zap.Error(err))
		return nil, err
	}

	tenant, err := domain.TenantFromDocument(created)
	if err != nil {
		return nil, err
	}

	m.registry.Upsert(tenant.ID.String(), *tenant.Database)

	if err := m.provisioner.CreateWorkspace(ctx, tenant.ID.String()); err != nil {
		// The record stays in the store; a tenant without a usable
		// workspace is operator-visible, not silently retried.
		return nil, err
	}

	m.bus.PublishTenantCreated(tenant)
	return tenant, nil
}

// Retrieve returns every tenant matching the query. It always hits the
// store; opts carry store-level operators such as pagination.
func (m *TenantManager) Retrieve(ctx context.Context, query domain.Query, opts *domain.RetrieveOptions) ([]*domain.Tenant, error) {
	db, err := m.master(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := db.Retrieve(ctx, tenantCollection, query, opts)
	if err != nil {
		return nil, err
	}

	tenants := make([]*domain.Tenant, 0, len(docs))
	for _, doc := range docs {
		t, err := domain.TenantFromDocument(doc)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

// RetrieveOne returns the tenant matching the query when the match is
// unique. Zero matches and multiple matches both resolve to (nil, nil):
// ambiguity is reported as absence, which can mask duplicate names that
// slipped past the advisory uniqueness check.
func (m *TenantManager) RetrieveOne(ctx context.Context, query domain.Query, opts *domain.RetrieveOptions) (*domain.Tenant, error) {
	tenants, err := m.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 1 {
		return tenants[0], nil
	}
	return nil, nil
}

// Update applies delta to the single tenant matching the query. The
// target is re-read before the write, and re-read again after it: the
// registry must reflect the store's authoritative state, not the
// caller-supplied delta.
func (m *TenantManager) Update(ctx context.Context, query domain.Query, delta domain.Document) (*domain.Tenant, error) {
	db, err := m.master(ctx)
	if err != nil {
		return nil, err
	}

	target, err := m.RetrieveOne(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrTenantNotFound
	}

	if err := db.Update(ctx, tenantCollection, query, delta); err != nil {
		return nil, err
	}

	updated, err := m.RetrieveOne(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The delta changed a field the query matched on.
		return nil, ErrTenantNotFound
	}

	if updated.Database != nil {
		m.registry.Upsert(updated.ID.String(), *updated.Database)
	}
	return updated, nil
}

// Destroy soft-deletes a tenant: it sets _isDeleted and leaves the record,
// and its registry entry, in place.
func (m *TenantManager) Destroy(ctx context.Context, tenantID string) error {
	target, err := m.RetrieveOne(ctx, domain.Query{"_id": tenantID}, nil)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrTenantNotFound
	}

	_, err = m.Update(ctx,
		domain.Query{"_id": target.ID.String()},
		domain.Document{"_isDeleted": true},
	)
	return err
}

// Delete removes the matching tenant record from the store. Administrative
// use only; the usual path is Destroy.
func (m *TenantManager) Delete(ctx context.Context, query domain.Query) error {
	db, err := m.master(ctx)
	if err != nil {
		return err
	}

	target, err := m.RetrieveOne(ctx, query, nil)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrTenantNotFound
	}

	return db.Destroy(ctx, tenantCollection, query)
}

// LoadDatabaseConfigs warms the registry: the reserved master entry first,
// then one entry per stored tenant keyed by identifier. Best effort;
// failures are logged and leave the registry partially populated.
func (m *TenantManager) LoadDatabaseConfigs(ctx context.Context) {
	m.registry.Upsert(m.defaults.MasterDBName, domain.DatabaseConfig{
		DBName: m.defaults.MasterDBName,
		DBHost: m.defaults.DBHost,
		DBUser: m.defaults.DBUser,
		DBPass: m.defaults.DBPass,
		DBPort: m.defaults.DBPort,
	})

	db, err := m.master(ctx)
	if err != nil {
		m.logger.Error("failed to load tenant databases", zap.Error(err))
		return
	}

	docs, err := db.Retrieve(ctx, tenantCollection, domain.Query{}, nil)
	if err != nil {
		m.logger.Error("failed to load tenant databases", zap.Error(err))
		return
	}

	for _, doc := range docs {
		t, err := domain.TenantFromDocument(doc)
		if err != nil || t.Database == nil {
			m.logger.Warn("skipping tenant with unusable database config",
				zap.Any("doc_id", doc["_id"]), zap.Error(err))
			continue
		}
		m.registry.Upsert(t.ID.String(), *t.Database)
	}

	m.logger.Info("tenant database registry loaded",
		zap.Int("entries", m.registry.Len()))
}

// DatabaseConfig returns the cached descriptor for the given tenant id, or
// the master entry for the master database's name. Pure cache lookup.
func (m *TenantManager) DatabaseConfig(tenantID string) (domain.DatabaseConfig, bool) {
	return m.registry.Lookup(tenantID)
}
