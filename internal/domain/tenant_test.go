package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestTenantJSONRoundTrip(t *testing.T) {
	id := uuid.New()
	in := Tenant{
		ID:   id,
		Name: "acme",
		Database: &DatabaseConfig{
			DBName: "acme", DBHost: "h", DBUser: "u", DBPass: "p", DBPort: 5432,
		},
		IsDeleted: true,
		Extra:     map[string]any{"displayName": "Acme Inc.", "seats": float64(10)},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Tenant
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.ID != id || out.Name != "acme" || !out.IsDeleted {
		t.Fatalf("known fields lost: %+v", out)
	}
	if out.Database == nil || *out.Database != *in.Database {
		t.Fatalf("database descriptor lost: %+v", out.Database)
	}
	if out.Extra["displayName"] != "Acme Inc." || out.Extra["seats"] != float64(10) {
		t.Fatalf("extra fields lost: %+v", out.Extra)
	}
}

func TestTenantMarshalOmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(Tenant{Name: "acme"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"_id", "database", "_isDeleted", "createdAt", "updatedAt"} {
		if _, present := m[key]; present {
			t.Errorf("expected %q to be omitted, got %v", key, m[key])
		}
	}
	if m["name"] != "acme" {
		t.Fatalf("expected name, got %v", m)
	}
}

func TestTenantDocumentConversion(t *testing.T) {
	in := &Tenant{Name: "acme", Extra: map[string]any{"plan": "pro"}}

	doc, err := in.Document()
	if err != nil {
		t.Fatalf("to document: %v", err)
	}
	if doc["name"] != "acme" || doc["plan"] != "pro" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	doc["_id"] = uuid.NewString()
	out, err := TenantFromDocument(doc)
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	if out.ID == uuid.Nil || out.Name != "acme" || out.Extra["plan"] != "pro" {
		t.Fatalf("unexpected tenant: %+v", out)
	}
}

func TestTenantUnmarshalRejectsBadID(t *testing.T) {
	var out Tenant
	if err := json.Unmarshal([]byte(`{"_id":"not-a-uuid","name":"acme"}`), &out); err == nil {
		t.Fatal("expected error for malformed _id")
	}
}
