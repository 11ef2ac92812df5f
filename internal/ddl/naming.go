package ddl

import (
	"fmt"
	"strings"

	"mysql2sqlite/internal/core"
)

// NameRegistry tracks every identifier already claimed in the destination
// database (table names and emitted index names) so the index-uniqueness
// invariant — no two emitted indexes share a name, and no index name equals
// a table name — holds across the whole run, not just within one table.
// Modeled as a plain map[string]struct{}, the same bookkeeping shape as the
// teacher's dialect registry in internal/dialect/dialect.go.
type NameRegistry struct {
	used map[string]struct{}
}

// NewNameRegistry seeds the registry with every table name up front, since
// an index name colliding with ANY table (not just its own) forces
// prefixing per spec.
func NewNameRegistry(tableNames []string) *NameRegistry {
	r := &NameRegistry{used: make(map[string]struct{}, len(tableNames)*2)}
	for _, t := range tableNames {
		r.used[t] = struct{}{}
	}
	return r
}

// IndexName resolves the emitted SQLite name for one index, applying the
// §3 invariant: the source name is kept as-is unless it collides with a
// table name or an index name already emitted in this run, or prefixAll is
// requested, in which case it becomes
// "<table>_<sourcename>"; an empty source name (some MySQL index
// definitions carry none) always becomes "<table>_<col1>_..._<colN>". Any
// residual collision, after those rules, is broken with a numeric suffix so
// the returned name is guaranteed unused.
func (r *NameRegistry) IndexName(table string, idx core.IndexDescriptor, prefixAll bool) string {
	var candidate string
	switch {
	case idx.SourceName == "":
		candidate = table + "_" + columnList(idx.Columns)
	case prefixAll || r.collides(idx.SourceName):
		candidate = table + "_" + idx.SourceName
	default:
		candidate = idx.SourceName
	}

	candidate = r.disambiguate(candidate)
	r.used[candidate] = struct{}{}
	return candidate
}

func (r *NameRegistry) collides(name string) bool {
	_, ok := r.used[name]
	return ok
}

func (r *NameRegistry) disambiguate(candidate string) string {
	if !r.collides(candidate) {
		return candidate
	}
	for n := 2; ; n++ {
		next := fmt.Sprintf("%s_%d", candidate, n)
		if !r.collides(next) {
			return next
		}
	}
}

func columnList(cols []core.IndexColumn) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, "_")
}
