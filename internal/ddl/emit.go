// Package ddl composes CREATE TABLE / CREATE INDEX statements for the
// destination SQLite database from an introspected core.TableDescriptor,
// applying the type/default translators and the index-naming policy.
// Statement assembly follows the teacher's Generator.GenerateCreateTable
// shape (a slice of column/constraint lines joined with ",\n"), retargeted
// from MySQL backtick quoting to SQLite double-quote identifiers.
package ddl

import (
	"fmt"
	"strings"

	"mysql2sqlite/internal/capability"
	"mysql2sqlite/internal/core"
	"mysql2sqlite/internal/translate"
	"mysql2sqlite/internal/value"
)

// Options configures one Emit call with the run-wide settings that affect
// DDL shape.
type Options struct {
	Capabilities        capability.Capabilities
	Strict              bool
	JSONAsText          bool
	Collation           core.CollationMode
	SuppressForeignKeys bool
	PrefixAllIndexNames bool
	Overrides           *translate.Overrides
}

// Result is the output of emitting one table's DDL.
type Result struct {
	Create   string
	Indexes  []string
	Warnings []string
}

// Emit produces exactly one CREATE TABLE IF NOT EXISTS statement followed
// by zero or more CREATE INDEX IF NOT EXISTS statements for t, per spec
// §4.6. names must be shared across every table in the run so index names
// stay globally unique.
func Emit(t *core.TableDescriptor, opts Options, names *NameRegistry) (Result, error) {
	var res Result

	autoIncCol, collapsed := t.SingleColumnAutoIncrementPK()
	if collapsed {
		// Only an integer-affine column can become INTEGER PRIMARY KEY AUTOINCREMENT.
		sqliteType, _, err := resolveType(t.Name, *autoIncCol, opts)
		if err != nil {
			return Result{}, err
		}
		collapsed = sqliteType == "INTEGER"
	}

	var lines []string
	for _, col := range t.Columns {
		line, warn, err := columnDefinition(t.Name, col, collapsed && autoIncCol != nil && autoIncCol.Name == col.Name, opts)
		if err != nil {
			return Result{}, err
		}
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		lines = append(lines, "  "+line)
	}

	if t.PrimaryKey != nil && !collapsed {
		lines = append(lines, "  "+primaryKeyClause(t.PrimaryKey))
	}

	for _, idx := range t.Indexes {
		if idx.Kind != core.IndexUnique || len(idx.Columns) != 1 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  UNIQUE (%s)", QuoteIdentifier(idx.Columns[0].Name)))
	}

	if !opts.SuppressForeignKeys {
		for _, fk := range t.ForeignKeys {
			lines = append(lines, "  "+foreignKeyClause(fk))
		}
	}

	strictSuffix := ""
	if opts.Strict && opts.Capabilities.StrictTablesAvailable {
		strictSuffix = " STRICT"
	}

	res.Create = fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n%s\n)%s;",
		QuoteIdentifier(t.Name), strings.Join(lines, ",\n"), strictSuffix,
	)

	for _, idx := range t.Indexes {
		stmt, warn := indexStatement(t.Name, idx, opts, names)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		if stmt != "" {
			res.Indexes = append(res.Indexes, stmt)
		}
	}

	return res, nil
}

func columnDefinition(table string, col core.ColumnDescriptor, collapseAutoIncrement bool, opts Options) (string, string, error) {
	name := QuoteIdentifier(col.Name)

	if collapseAutoIncrement {
		return fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", name), "", nil
	}

	sqliteType, warn, err := resolveType(table, col, opts)
	if err != nil {
		return "", "", err
	}

	if col.Generated {
		genWarn := fmt.Sprintf("%s.%s: MySQL GENERATED ALWAYS AS expression dropped, column materialized as a plain value", table, col.Name)
		if warn != "" {
			warn += "; " + genWarn
		} else {
			warn = genWarn
		}
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(sqliteType)

	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}

	def := translate.TranslateDefault(col.Default, col.Nullable, table, col.Name)
	if def.Clause != "" {
		b.WriteString(" ")
		b.WriteString(def.Clause)
	}
	if def.Dropped && def.Warning != "" {
		if warn != "" {
			warn += "; "
		}
		warn += def.Warning
		if value.LooksLikeUUIDColumn(col.Name) {
			warn += fmt.Sprintf("; column name suggests a generated identifier, e.g. %s", value.FallbackIdentifier())
		}
	}

	return b.String(), warn, nil
}

func resolveType(table string, col core.ColumnDescriptor, opts Options) (string, string, error) {
	if ov, ok := opts.Overrides.Lookup(table, col.Name); ok {
		collation := ov.Collation
		if collation == "" {
			collation = string(opts.Collation)
		}
		return sqliteTypeWithCollation(ov.SQLiteType, collation), "", nil
	}

	if col.RawType == "" {
		// A materialized view (--mysql-views-as-tables) whose column is a
		// pure expression reports no declared type in information_schema.
		// Resolving spec's open question conservatively: never drop the
		// column, fall back to TEXT with a warning.
		warn := fmt.Sprintf("%s.%s: view column has no declared type, defaulting to TEXT", table, col.Name)
		return sqliteTypeWithCollation("TEXT", string(opts.Collation)), warn, nil
	}

	st := translate.ParseSourceType(col.RawType)
	translated, err := translate.Translate(st, translate.Options{
		Capabilities: opts.Capabilities,
		Strict:       opts.Strict,
		JSONAsText:   opts.JSONAsText,
		Collation:    string(opts.Collation),
	})
	if err != nil {
		return "", "", fmt.Errorf("%s.%s: %w", table, col.Name, err)
	}

	return translated.ColumnTypeClause(string(opts.Collation)), "", nil
}

func sqliteTypeWithCollation(sqliteType, collation string) string {
	if collation == "" || collation == string(core.CollationBinary) {
		return sqliteType
	}
	return sqliteType + " COLLATE " + collation
}

func primaryKeyClause(pk *core.IndexDescriptor) string {
	names := make([]string, len(pk.Columns))
	for i, c := range pk.Columns {
		names[i] = QuoteIdentifier(c.Name)
	}
	return fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(names, ", "))
}

func foreignKeyClause(fk core.ForeignKeyDescriptor) string {
	cols := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		cols[i] = QuoteIdentifier(c)
	}
	refCols := make([]string, len(fk.ReferencedColumns))
	for i, c := range fk.ReferencedColumns {
		refCols[i] = QuoteIdentifier(c)
	}
	return fmt.Sprintf(
		"FOREIGN KEY (%s) REFERENCES %s (%s) ON UPDATE %s ON DELETE %s",
		strings.Join(cols, ", "), QuoteIdentifier(fk.ReferencedTable), strings.Join(refCols, ", "),
		fk.OnUpdate, fk.OnDelete,
	)
}

// indexStatement emits a CREATE INDEX/CREATE UNIQUE INDEX for one secondary
// index. Single-column UNIQUE indexes are skipped here since Emit already
// inlined them as a table-level UNIQUE constraint. FULLTEXT and SPATIAL
// indexes have no SQLite equivalent and are dropped with a warning, per the
// Non-goals on MySQL-only feature preservation.
func indexStatement(table string, idx core.IndexDescriptor, opts Options, names *NameRegistry) (string, string) {
	if idx.Kind == core.IndexPrimary {
		return "", ""
	}
	if idx.Kind == core.IndexFullText || idx.Kind == core.IndexSpatial {
		return "", fmt.Sprintf("%s: dropped unsupported %s index %q", table, idx.Kind, idx.SourceName)
	}
	if idx.Kind == core.IndexUnique && len(idx.Columns) == 1 {
		// already inlined as a table-level UNIQUE constraint, not a named index.
		return "", ""
	}

	unique := ""
	if idx.Kind == core.IndexUnique {
		unique = "UNIQUE "
	}

	name := names.IndexName(table, idx, opts.PrefixAllIndexNames)
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = QuoteIdentifier(c.Name)
	}

	return fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s);",
		unique, QuoteIdentifier(name), QuoteIdentifier(table), strings.Join(cols, ", "),
	), ""
}
