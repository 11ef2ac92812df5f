package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mysql2sqlite/internal/core"
)

func TestIndexName_EmptySourceNameUsesColumnList(t *testing.T) {
	r := NewNameRegistry([]string{"users", "orders"})
	idx := core.IndexDescriptor{
		SourceName: "",
		Columns:    []core.IndexColumn{{Name: "last_name"}, {Name: "first_name"}},
	}
	assert.Equal(t, "users_last_name_first_name", r.IndexName("users", idx, false))
}

func TestIndexName_CollisionWithTableNameForcesPrefix(t *testing.T) {
	r := NewNameRegistry([]string{"users", "orders"})
	idx := core.IndexDescriptor{SourceName: "orders", Columns: []core.IndexColumn{{Name: "id"}}}
	assert.Equal(t, "users_orders", r.IndexName("users", idx, false))
}

func TestIndexName_PrefixAllForcesPrefixEvenWithoutCollision(t *testing.T) {
	r := NewNameRegistry([]string{"users"})
	idx := core.IndexDescriptor{SourceName: "email_idx", Columns: []core.IndexColumn{{Name: "email"}}}
	assert.Equal(t, "users_email_idx", r.IndexName("users", idx, true))
}

func TestIndexName_NoCollisionKeepsSourceName(t *testing.T) {
	r := NewNameRegistry([]string{"users"})
	idx := core.IndexDescriptor{SourceName: "email_idx", Columns: []core.IndexColumn{{Name: "email"}}}
	assert.Equal(t, "email_idx", r.IndexName("users", idx, false))
}

func TestIndexName_GlobalUniquenessAcrossTables(t *testing.T) {
	// Property 3: the multiset of emitted index names has no duplicates
	// and no emitted name equals any table name, across a whole run.
	r := NewNameRegistry([]string{"users", "orders"})

	seen := map[string]bool{"users": true, "orders": true}

	nameIdxUsers := core.IndexDescriptor{SourceName: "name_idx", Columns: []core.IndexColumn{{Name: "name"}}}
	nameIdxOrders := core.IndexDescriptor{SourceName: "name_idx", Columns: []core.IndexColumn{{Name: "name"}}}

	n1 := r.IndexName("users", nameIdxUsers, true)
	n2 := r.IndexName("orders", nameIdxOrders, true)

	assert.Equal(t, "users_name_idx", n1)
	assert.Equal(t, "orders_name_idx", n2)
	assert.NotEqual(t, n1, n2)
	for _, n := range []string{n1, n2} {
		assert.False(t, seen[n], "emitted index name %q must not equal any table name", n)
		seen[n] = true
	}
}

func TestIndexName_ResidualCollisionGetsNumericSuffix(t *testing.T) {
	r := NewNameRegistry([]string{"t"})
	idx1 := core.IndexDescriptor{SourceName: "", Columns: []core.IndexColumn{{Name: "a"}}}
	idx2 := core.IndexDescriptor{SourceName: "", Columns: []core.IndexColumn{{Name: "a"}}}

	n1 := r.IndexName("t", idx1, false)
	n2 := r.IndexName("t", idx2, false)
	assert.Equal(t, "t_a", n1)
	assert.Equal(t, "t_a_2", n2)
}
