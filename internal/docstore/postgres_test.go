package docstore

import (
	"context"
	"testing"

	"github.com/courseforge/courseforge/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClauseIDAndBody(t *testing.T) {
	id := uuid.New()
	where, args, err := whereClause(domain.Query{"_id": id.String(), "name": "acme"})
	require.NoError(t, err)

	assert.Contains(t, where, "id = $1")
	assert.Contains(t, where, "doc @> $2")
	require.Len(t, args, 2)
	assert.Equal(t, id, args[0])
	assert.JSONEq(t, `{"name":"acme"}`, string(args[1].([]byte)))
}

func TestWhereClauseEmptyQuery(t *testing.T) {
	where, args, err := whereClause(domain.Query{})
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClauseRejectsBadID(t *testing.T) {
	_, _, err := whereClause(domain.Query{"_id": "not-a-uuid"})
	assert.Error(t, err)

	_, _, err = whereClause(domain.Query{"_id": 42})
	assert.Error(t, err)
}

func TestParseIDAcceptsUUIDValue(t *testing.T) {
	id := uuid.New()
	got, err := parseID(id)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestStripManaged(t *testing.T) {
	doc := domain.Document{
		"_id":       "x",
		"createdAt": "now",
		"updatedAt": "now",
		"name":      "acme",
	}
	out := stripManaged(doc)
	assert.Equal(t, domain.Document{"name": "acme"}, out)
	// Input untouched.
	assert.Contains(t, doc, "_id")
}

func TestEnsureCollectionRejectsBadNames(t *testing.T) {
	d := &pgDatabase{tables: make(map[string]bool)}
	for _, name := range []string{"", "Tenant", "te nant", `ten"ant`, "1tenant"} {
		_, err := d.ensureCollection(context.Background(), name)
		assert.ErrorIs(t, err, ErrBadCollection, "collection %q", name)
	}
}
