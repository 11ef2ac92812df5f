// Package core contains the in-memory schema model shared by the
// introspector, the translators, the DDL emitter, and the row streamer.
// It describes a MySQL/MariaDB source schema in a form that is already
// halfway to SQLite, without committing to SQLite syntax.
package core

import (
	"fmt"

	"mysql2sqlite/internal/xerr"
)

// ColumnDescriptor describes a single MySQL column as reported by the
// source catalog.
type ColumnDescriptor struct {
	// Name is the column identifier, case-preserving.
	Name string
	// RawType is the declared type string as reported by information_schema,
	// e.g. "int(11) unsigned", "varchar(32)", "decimal(10,2)", "enum('a','b')".
	RawType string
	// Nullable reports whether the column accepts NULL.
	Nullable bool
	// Default is the raw source default expression. Nil means "no default".
	Default *string
	// AutoIncrement reports whether the column carries MySQL's auto_increment extra flag.
	AutoIncrement bool
	// Charset is the column's character set; only meaningful for text types.
	Charset string
	// Collation is the column's collation; only meaningful for text types.
	Collation string
	// Generated reports whether the column is a MySQL GENERATED ALWAYS AS column.
	// Its expression is treated as an opaque, unrepresentable default (spec open question).
	Generated bool
}

// IndexKind enumerates the recognized MySQL index kinds.
type IndexKind string

const (
	IndexPrimary  IndexKind = "primary"
	IndexUnique   IndexKind = "unique"
	IndexNormal   IndexKind = "normal"
	IndexFullText IndexKind = "fulltext"
	IndexSpatial  IndexKind = "spatial"
)

// IndexColumn is one column participating in an index, in index order.
type IndexColumn struct {
	Name string
	// PrefixLength is the source's optional index-prefix length; ignored when emitting.
	PrefixLength int
}

// IndexDescriptor describes a secondary index or the primary key.
type IndexDescriptor struct {
	// SourceName is the MySQL index name. Empty for some primary keys; "PRIMARY" denotes the PK.
	SourceName string
	Columns    []IndexColumn
	Kind       IndexKind
}

// ReferentialAction is one of the SQL-standard FK referential actions.
type ReferentialAction string

const (
	ActionRestrict   ReferentialAction = "RESTRICT"
	ActionCascade    ReferentialAction = "CASCADE"
	ActionSetNull    ReferentialAction = "SET NULL"
	ActionNoAction   ReferentialAction = "NO ACTION"
	ActionSetDefault ReferentialAction = "SET DEFAULT"
)

// ForeignKeyDescriptor describes one foreign-key constraint.
type ForeignKeyDescriptor struct {
	ConstraintName    string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnUpdate          ReferentialAction
	OnDelete          ReferentialAction
}

// TableKind distinguishes base tables from views materialized as tables.
type TableKind string

const (
	TableKindBase TableKind = "table"
	TableKindView TableKind = "view"
)

// TableDescriptor is the complete introspected shape of one source table.
type TableDescriptor struct {
	Name        string
	Columns     []ColumnDescriptor
	PrimaryKey  *IndexDescriptor
	Indexes     []IndexDescriptor
	ForeignKeys []ForeignKeyDescriptor
	Kind        TableKind
}

// FindColumn looks up a column by name, or returns nil.
func (t *TableDescriptor) FindColumn(name string) *ColumnDescriptor {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// SingleColumnAutoIncrementPK reports whether the table has exactly one
// primary-key column and that column is auto_increment, returning it.
func (t *TableDescriptor) SingleColumnAutoIncrementPK() (*ColumnDescriptor, bool) {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) != 1 {
		return nil, false
	}
	col := t.FindColumn(t.PrimaryKey.Columns[0].Name)
	if col == nil || !col.AutoIncrement {
		return nil, false
	}
	return col, true
}

// String renders a short diagnostic summary, mirroring core.Table.String in the
// schema-diff tooling this engine descends from.
func (t *TableDescriptor) String() string {
	return fmt.Sprintf("Table: %s (%d cols, %d indexes, %d fks)", t.Name, len(t.Columns), len(t.Indexes), len(t.ForeignKeys))
}

// TableSelection is a three-way exclusive table-selection mode.
type TableSelection int

const (
	SelectAll TableSelection = iota
	SelectInclude
	SelectExclude
)

// TransferPlan is the fully resolved, validated set of options driving one run.
type TransferPlan struct {
	Database string

	Selection     TableSelection
	IncludeTables []string
	ExcludeTables []string

	IncludeViews bool

	RowCap int64 // <=0 means unlimited

	Collation           CollationMode
	PrefixAllIndexNames bool
	SuppressForeignKeys bool
	WithoutDDL          bool
	WithoutData         bool
	Strict              bool
	JSONAsText          bool
	ChunkSize           int // 0 means unchunked streaming mode
	Vacuum              bool
	BufferedCursors     bool
}

// CollationMode is the TEXT-affine collation an operator may force via -C.
type CollationMode string

const (
	CollationBinary CollationMode = "BINARY"
	CollationNocase CollationMode = "NOCASE"
	CollationRtrim  CollationMode = "RTRIM"
)

// Validate enforces the mutually-exclusive option combinations from the CLI
// surface (information_schema-scale table selection, DDL/data suppression,
// and the implicit FK suppression that table subsets impose).
func (p *TransferPlan) Validate() error {
	if len(p.IncludeTables) > 0 && len(p.ExcludeTables) > 0 {
		return xerr.Configuration("t", "-t and -e are mutually exclusive")
	}
	if p.WithoutDDL && p.WithoutData {
		return xerr.Configuration("Z", "-Z and -W are mutually exclusive")
	}
	switch p.Collation {
	case "", CollationBinary, CollationNocase, CollationRtrim:
	default:
		return xerr.Configuration("C", fmt.Sprintf("unknown collation %q", p.Collation))
	}
	if p.ChunkSize < 0 {
		return xerr.Configuration("c", "chunk size must be >= 0")
	}
	if len(p.IncludeTables) > 0 {
		p.Selection = SelectInclude
	} else if len(p.ExcludeTables) > 0 {
		p.Selection = SelectExclude
	} else {
		p.Selection = SelectAll
	}
	// Foreign keys are emitted only when the plan covers every table.
	if p.Selection != SelectAll {
		p.SuppressForeignKeys = true
	}
	return nil
}
