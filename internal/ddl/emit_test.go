package ddl

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql2sqlite/internal/capability"
	"mysql2sqlite/internal/core"
	"mysql2sqlite/internal/translate"
)

func strPtr(s string) *string { return &s }

func baseOpts() Options {
	return Options{
		Capabilities: capability.Capabilities{JSON1Available: true, StrictTablesAvailable: true},
		Overrides:    mustEmptyOverrides(),
	}
}

func mustEmptyOverrides() *translate.Overrides {
	o, err := translate.LoadOverrides("")
	if err != nil {
		panic(err)
	}
	return o
}

// TestEmit_E1 matches spec.md's literal end-to-end scenario E1.
func TestEmit_E1_UsersTable(t *testing.T) {
	table := &core.TableDescriptor{
		Name: "users",
		Columns: []core.ColumnDescriptor{
			{Name: "id", RawType: "int(11)", Nullable: false, AutoIncrement: true},
			{Name: "email", RawType: "varchar(190)", Nullable: false},
			{Name: "created_at", RawType: "datetime", Nullable: true, Default: strPtr("CURRENT_TIMESTAMP")},
		},
		PrimaryKey: &core.IndexDescriptor{
			SourceName: "PRIMARY",
			Columns:    []core.IndexColumn{{Name: "id"}},
			Kind:       core.IndexPrimary,
		},
		Indexes: []core.IndexDescriptor{
			{SourceName: "PRIMARY", Columns: []core.IndexColumn{{Name: "id"}}, Kind: core.IndexPrimary},
		},
	}

	names := NewNameRegistry([]string{"users"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)

	create := normalizeWhitespace(result.Create)
	assert.Contains(t, create, `CREATE TABLE IF NOT EXISTS "users"`)
	assert.Contains(t, create, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, create, `"email" TEXT NOT NULL`)
	assert.Contains(t, create, `"created_at" DATETIME DEFAULT CURRENT_TIMESTAMP`)
	assert.NotContains(t, create, "PRIMARY KEY (\"id\")", "collapsed auto-increment column must not also get a table-level PRIMARY KEY clause")
	assert.Empty(t, result.Indexes, "the PRIMARY index itself never gets a CREATE INDEX statement")
}

// TestEmit_E2 matches spec.md's literal BIT(4) default scenario.
func TestEmit_E2_BitDefault(t *testing.T) {
	table := &core.TableDescriptor{
		Name: "widgets",
		Columns: []core.ColumnDescriptor{
			{Name: "flags", RawType: "bit(4)", Nullable: true, Default: strPtr("b'1010'")},
		},
	}
	names := NewNameRegistry([]string{"widgets"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)
	assert.Contains(t, normalizeWhitespace(result.Create), `"flags" INTEGER DEFAULT 10`)
}

// TestEmit_E3 matches spec.md's literal JSON-column scenario under both
// capability states.
func TestEmit_E3_JSONColumn(t *testing.T) {
	table := &core.TableDescriptor{
		Name:    "docs",
		Columns: []core.ColumnDescriptor{{Name: "payload", RawType: "json", Nullable: true}},
	}

	withJSON1 := baseOpts()
	withJSON1.Capabilities.JSON1Available = true
	names := NewNameRegistry([]string{"docs"})
	result, err := Emit(table, withJSON1, names)
	require.NoError(t, err)
	assert.Contains(t, normalizeWhitespace(result.Create), `"payload" JSON`)

	withoutJSON1 := baseOpts()
	withoutJSON1.Capabilities.JSON1Available = false
	names2 := NewNameRegistry([]string{"docs"})
	result2, err := Emit(table, withoutJSON1, names2)
	require.NoError(t, err)
	assert.Contains(t, normalizeWhitespace(result2.Create), `"payload" TEXT`)
}

// TestEmit_AutoIncrementCollapse_Property checks property 4: collapse
// happens if and only if exactly one PK column, auto_increment, INTEGER.
func TestEmit_AutoIncrementCollapse_Property(t *testing.T) {
	tests := []struct {
		name          string
		columns       []core.ColumnDescriptor
		pk            []core.IndexColumn
		wantCollapsed bool
	}{
		{
			name:          "single auto-increment integer PK collapses",
			columns:       []core.ColumnDescriptor{{Name: "id", RawType: "int(11)", AutoIncrement: true}, {Name: "n", RawType: "int(11)"}},
			pk:            []core.IndexColumn{{Name: "id"}},
			wantCollapsed: true,
		},
		{
			name:          "non-auto-increment PK does not collapse",
			columns:       []core.ColumnDescriptor{{Name: "id", RawType: "int(11)"}, {Name: "n", RawType: "int(11)"}},
			pk:            []core.IndexColumn{{Name: "id"}},
			wantCollapsed: false,
		},
		{
			name: "composite PK with an auto-increment column does not collapse",
			columns: []core.ColumnDescriptor{
				{Name: "a", RawType: "int(11)", AutoIncrement: true},
				{Name: "b", RawType: "int(11)"},
			},
			pk:            []core.IndexColumn{{Name: "a"}, {Name: "b"}},
			wantCollapsed: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := &core.TableDescriptor{
				Name:       "t",
				Columns:    tc.columns,
				PrimaryKey: &core.IndexDescriptor{SourceName: "PRIMARY", Columns: tc.pk, Kind: core.IndexPrimary},
			}
			names := NewNameRegistry([]string{"t"})
			result, err := Emit(table, baseOpts(), names)
			require.NoError(t, err)

			create := normalizeWhitespace(result.Create)
			hasAutoincrement := strings.Contains(create, "AUTOINCREMENT")
			hasTableLevelPK := strings.Contains(create, "PRIMARY KEY (")

			assert.Equal(t, tc.wantCollapsed, hasAutoincrement)
			assert.Equal(t, !tc.wantCollapsed, hasTableLevelPK)
		})
	}
}

// TestEmit_FKSuppression_Property checks property 5: when foreign keys are
// suppressed, no emitted DDL contains a FOREIGN KEY clause.
func TestEmit_FKSuppression_Property(t *testing.T) {
	table := &core.TableDescriptor{
		Name:    "orders",
		Columns: []core.ColumnDescriptor{{Name: "id", RawType: "int(11)"}, {Name: "user_id", RawType: "int(11)"}},
		ForeignKeys: []core.ForeignKeyDescriptor{
			{
				ConstraintName:    "fk_user",
				Columns:           []string{"user_id"},
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
				OnUpdate:          core.ActionCascade,
				OnDelete:          core.ActionRestrict,
			},
		},
	}

	opts := baseOpts()
	opts.SuppressForeignKeys = true
	names := NewNameRegistry([]string{"orders", "users"})
	result, err := Emit(table, opts, names)
	require.NoError(t, err)
	assert.NotContains(t, result.Create, "FOREIGN KEY")

	opts2 := baseOpts()
	opts2.SuppressForeignKeys = false
	names2 := NewNameRegistry([]string{"orders", "users"})
	result2, err := Emit(table, opts2, names2)
	require.NoError(t, err)
	assert.Contains(t, result2.Create, "FOREIGN KEY")
	assert.Contains(t, result2.Create, "ON UPDATE CASCADE")
	assert.Contains(t, result2.Create, "ON DELETE RESTRICT")
}

func TestEmit_StrictAppendsTableSuffixAndDowngradesTypes(t *testing.T) {
	table := &core.TableDescriptor{
		Name: "t",
		Columns: []core.ColumnDescriptor{
			{Name: "amount", RawType: "decimal(10,2)"},
			{Name: "seen_at", RawType: "datetime"},
		},
	}
	opts := baseOpts()
	opts.Strict = true
	names := NewNameRegistry([]string{"t"})
	result, err := Emit(table, opts, names)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(result.Create), "STRICT;"))
	assert.Contains(t, normalizeWhitespace(result.Create), `"amount" TEXT`)
	assert.Contains(t, normalizeWhitespace(result.Create), `"seen_at" TEXT`)
}

func TestEmit_SpatialAndFullTextIndexesDroppedWithWarning(t *testing.T) {
	table := &core.TableDescriptor{
		Name:    "places",
		Columns: []core.ColumnDescriptor{{Name: "geo", RawType: "geometry"}, {Name: "description", RawType: "text"}},
		Indexes: []core.IndexDescriptor{
			{SourceName: "geo_idx", Columns: []core.IndexColumn{{Name: "geo"}}, Kind: core.IndexSpatial},
			{SourceName: "desc_ft", Columns: []core.IndexColumn{{Name: "description"}}, Kind: core.IndexFullText},
		},
	}
	names := NewNameRegistry([]string{"places"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)
	assert.Empty(t, result.Indexes)
	require.Len(t, result.Warnings, 2)
}

func TestEmit_MultiColumnUniqueBecomesCreateIndex(t *testing.T) {
	table := &core.TableDescriptor{
		Name:    "people",
		Columns: []core.ColumnDescriptor{{Name: "first", RawType: "varchar(20)"}, {Name: "last", RawType: "varchar(20)"}},
		Indexes: []core.IndexDescriptor{
			{SourceName: "full_name", Columns: []core.IndexColumn{{Name: "first"}, {Name: "last"}}, Kind: core.IndexUnique},
		},
	}
	names := NewNameRegistry([]string{"people"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)
	assert.NotContains(t, result.Create, "UNIQUE (")
	require.Len(t, result.Indexes, 1)
	assert.Contains(t, result.Indexes[0], "CREATE UNIQUE INDEX IF NOT EXISTS")
}

func TestEmit_SingleColumnUniqueInlined(t *testing.T) {
	table := &core.TableDescriptor{
		Name:    "people",
		Columns: []core.ColumnDescriptor{{Name: "email", RawType: "varchar(190)"}},
		Indexes: []core.IndexDescriptor{
			{SourceName: "email_unique", Columns: []core.IndexColumn{{Name: "email"}}, Kind: core.IndexUnique},
		},
	}
	names := NewNameRegistry([]string{"people"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)
	assert.Contains(t, result.Create, "UNIQUE (\"email\")")
	assert.Empty(t, result.Indexes)
}

func TestEmit_UnknownTypeErrors(t *testing.T) {
	table := &core.TableDescriptor{
		Name:    "t",
		Columns: []core.ColumnDescriptor{{Name: "c", RawType: "frobnicate(3)"}},
	}
	names := NewNameRegistry([]string{"t"})
	_, err := Emit(table, baseOpts(), names)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t")
	assert.Contains(t, err.Error(), "c")
}

func TestEmit_ColumnOverrideWins(t *testing.T) {
	ovPath := writeTempOverrides(t, `
[[column]]
table = "orders"
column = "total"
sqlite_type = "REAL"
`)
	overrides, err := translate.LoadOverrides(ovPath)
	require.NoError(t, err)

	opts := baseOpts()
	opts.Overrides = overrides

	table := &core.TableDescriptor{
		Name:    "orders",
		Columns: []core.ColumnDescriptor{{Name: "total", RawType: "decimal(10,2)"}},
	}
	names := NewNameRegistry([]string{"orders"})
	result, err := Emit(table, opts, names)
	require.NoError(t, err)
	assert.Contains(t, result.Create, `"total" REAL`)
}

func TestEmit_GeneratedColumnDroppedWithWarning(t *testing.T) {
	table := &core.TableDescriptor{
		Name: "t",
		Columns: []core.ColumnDescriptor{
			{Name: "a", RawType: "int(11)"},
			{Name: "b", RawType: "int(11)", Generated: true},
		},
	}
	names := NewNameRegistry([]string{"t"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)
	assert.Contains(t, normalizeWhitespace(result.Create), `"b" INTEGER`, "a generated column still gets materialized as a plain column")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "t.b")
	assert.Contains(t, result.Warnings[0], "GENERATED ALWAYS AS")
}

func TestEmit_DroppedUUIDDefaultHintsFallbackIdentifier(t *testing.T) {
	table := &core.TableDescriptor{
		Name: "t",
		Columns: []core.ColumnDescriptor{
			{Name: "request_uuid", RawType: "varchar(36)", Default: strPtr("(uuid())")},
		},
	}
	names := NewNameRegistry([]string{"t"})
	result, err := Emit(table, baseOpts(), names)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "t.request_uuid")
	assert.Contains(t, result.Warnings[0], "generated identifier")
}

func writeTempOverrides(t *testing.T, content string) string {
	t.Helper()
	f := t.TempDir() + "/overrides.toml"
	require.NoError(t, os.WriteFile(f, []byte(content), 0o644))
	return f
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
