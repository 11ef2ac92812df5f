// Package value converts MySQL wire values into SQLite storage classes and
// back, per spec §4.2. It never rejects a value for its content — only for
// a type mismatch the translator should already have prevented.
package value

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mysql2sqlite/internal/xerr"
)

// Adapter converts already-scanned MySQL column values (as delivered by
// database/sql, which hands back []byte, int64, float64, bool, time.Time,
// or nil depending on the driver's own type inference) into the bind value
// SQLite expects for a column of a given translated type.
type Adapter struct{}

// NewAdapter constructs a value Adapter. It carries no state; MySQL's own
// driver already resolves wire-level representations before Go code sees
// them, so unlike the type translator the adapter needs no Options.
func NewAdapter() *Adapter { return &Adapter{} }

// ToSQLite converts one scanned MySQL column value into the driver.Value
// SQLite should bind for a column whose translated type is sqliteType
// ("INTEGER", "REAL", "TEXT", "BLOB", "DATE", "DATETIME", "TIME", "JSON",
// or a "DECIMAL(p,s)" string).
func (a *Adapter) ToSQLite(table, column, sqliteType string, raw any) (driver.Value, error) {
	if raw == nil {
		return nil, nil
	}

	base := baseAffinity(sqliteType)

	switch v := raw.(type) {
	case []byte:
		switch base {
		case "BLOB":
			return v, nil
		default:
			return string(v), nil
		}
	case string:
		return v, nil
	case int64:
		return v, nil
	case float64:
		return v, nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case nil:
		return nil, nil
	default:
		return nil, xerr.DataError(table, column, -1, fmt.Errorf("unsupported source value type %T", raw))
	}
}

// baseAffinity strips a DECIMAL(p,s) parameterization down to its base
// storage-class keyword for the purposes of the switch above.
func baseAffinity(sqliteType string) string {
	if idx := strings.IndexByte(sqliteType, '('); idx >= 0 {
		return strings.ToUpper(sqliteType[:idx])
	}
	return strings.ToUpper(sqliteType)
}

// FallbackIdentifier returns a freshly generated UUID string, used only as
// documented in SPEC_FULL.md §11 item 6: a hint value offered when a
// dropped (UUID())-style default sits on a column whose name suggests it is
// a primary identifier. It is never substituted automatically into a row;
// callers decide whether to use it.
func FallbackIdentifier() string {
	return uuid.NewString()
}

// LooksLikeUUIDColumn reports whether a column name suggests it holds a
// generated identifier, used to decide whether to surface the
// FallbackIdentifier hint alongside a dropped expression-default warning.
func LooksLikeUUIDColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "uuid") || strings.Contains(strings.ToLower(name), "guid")
}
