package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DatabaseConfig describes the connection parameters for one tenant's
// logical database.
type DatabaseConfig struct {
	DBName string `json:"dbName"`
	DBHost string `json:"dbHost"`
	DBUser string `json:"dbUser"`
	DBPass string `json:"dbPass"`
	DBPort int    `json:"dbPort"`
}

// Tenant is an isolated customer account. Name is the primary human-facing
// identifier and is advisorily unique. Fields outside the known set
// round-trip through Extra untouched.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Database  *DatabaseConfig
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Extra     map[string]any
}

const (
	keyID        = "_id"
	keyName      = "name"
	keyDatabase  = "database"
	keyIsDeleted = "_isDeleted"
	keyCreatedAt = "createdAt"
	keyUpdatedAt = "updatedAt"
)

func (t Tenant) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(t.Extra)+6)
	for k, v := range t.Extra {
		m[k] = v
	}
	if t.ID != uuid.Nil {
		m[keyID] = t.ID.String()
	}
	m[keyName] = t.Name
	if t.Database != nil {
		m[keyDatabase] = t.Database
	}
	if t.IsDeleted {
		m[keyIsDeleted] = true
	}
	if !t.CreatedAt.IsZero() {
		m[keyCreatedAt] = t.CreatedAt.Format(time.RFC3339Nano)
	}
	if !t.UpdatedAt.IsZero() {
		m[keyUpdatedAt] = t.UpdatedAt.Format(time.RFC3339Nano)
	}
	return json.Marshal(m)
}

func (t *Tenant) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*t = Tenant{}
	for k, raw := range m {
		switch k {
		case keyID:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return err
			}
			t.ID = id
		case keyName:
			if err := json.Unmarshal(raw, &t.Name); err != nil {
				return err
			}
		case keyDatabase:
			if err := json.Unmarshal(raw, &t.Database); err != nil {
				return err
			}
		case keyIsDeleted:
			if err := json.Unmarshal(raw, &t.IsDeleted); err != nil {
				return err
			}
		case keyCreatedAt:
			if err := json.Unmarshal(raw, &t.CreatedAt); err != nil {
				return err
			}
		case keyUpdatedAt:
			if err := json.Unmarshal(raw, &t.UpdatedAt); err != nil {
				return err
			}
		default:
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			if t.Extra == nil {
				t.Extra = make(map[string]any)
			}
			t.Extra[k] = v
		}
	}
	return nil
}

// Document converts the tenant to its document-store representation.
func (t *Tenant) Document() (Document, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// TenantFromDocument converts a stored document back into a Tenant.
func TenantFromDocument(doc Document) (*Tenant, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	t := &Tenant{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}
