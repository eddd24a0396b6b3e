package domain

import "context"

// Document is a schemaless record as stored in a collection. The store
// assigns "_id" on create.
type Document map[string]any

// Query matches documents by field equality. An "_id" key matches the
// document identifier; all other keys match within the document body.
type Query map[string]any

// SortField orders results by a top-level document field.
type SortField struct {
	Key  string
	Desc bool
}

// RetrieveOptions carries store-level operators (pagination, ordering)
// that are opaque to callers above the store.
type RetrieveOptions struct {
	Skip  int         `json:"skip,omitempty"`
	Limit int         `json:"limit,omitempty"`
	Sort  []SortField `json:"-"`
}

// Database is a handle to one named logical database.
type Database interface {
	Retrieve(ctx context.Context, collection string, query Query, opts *RetrieveOptions) ([]Document, error)
	Create(ctx context.Context, collection string, doc Document) (Document, error)
	Update(ctx context.Context, collection string, query Query, delta Document) error
	Destroy(ctx context.Context, collection string, query Query) error
}

// DocumentStore hands out logical database handles by name.
type DocumentStore interface {
	Database(ctx context.Context, name string) (Database, error)
}

// WorkspaceProvisioner creates a tenant's on-disk workspace.
type WorkspaceProvisioner interface {
	CreateWorkspace(ctx context.Context, tenantID string) error
}
