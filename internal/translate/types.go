// Package translate implements the schema translator pair described in
// spec §4.3-4.4: a total function from a parsed MySQL SourceType to a
// SQLite column type string, and a rule-ordered function from a raw MySQL
// default expression to a SQLite DEFAULT clause (or none).
package translate

import (
	"fmt"

	"mysql2sqlite/internal/capability"
	"mysql2sqlite/internal/xerr"
)

// Options configures the type translator with the user preferences that
// change its output: capability flags, strict mode, JSON handling, and the
// TEXT-affine collation to append.
type Options struct {
	Capabilities capability.Capabilities
	Strict       bool
	JSONAsText   bool
	// Collation is appended to TEXT-affine columns only when non-default
	// ("BINARY" is SQLite's implicit default and is never appended).
	Collation string
}

// SQLiteType is the translator's output: a column type string plus whether
// a COLLATE clause should be appended (TEXT-affine columns only).
type SQLiteType struct {
	Name                string
	CollationApplicable bool
}

// Translate maps a SourceType to a SQLiteType under the given Options. It
// is a total function over every Family Translate recognizes; FamilyUnknown
// is the only rejection path, returning a schema-translation error.
func Translate(st SourceType, opts Options) (SQLiteType, error) {
	switch st.Family {
	case FamilyTinyInt, FamilySmallInt, FamilyMediumInt, FamilyInt, FamilyBigInt, FamilyYear:
		return SQLiteType{Name: "INTEGER"}, nil

	case FamilyBit:
		if st.Size <= 8 {
			return SQLiteType{Name: "INTEGER"}, nil
		}
		return SQLiteType{Name: "BLOB"}, nil

	case FamilyFloat, FamilyDouble:
		return SQLiteType{Name: "REAL"}, nil

	case FamilyDecimal:
		if opts.Strict && opts.Capabilities.StrictTablesAvailable {
			return textType(opts), nil
		}
		return SQLiteType{Name: fmt.Sprintf("DECIMAL(%d,%d)", precisionOrDefault(st.Precision), st.Scale), CollationApplicable: false}, nil

	case FamilyChar:
		return textType(opts), nil

	case FamilyDate:
		if opts.Strict && opts.Capabilities.StrictTablesAvailable {
			return textType(opts), nil
		}
		return SQLiteType{Name: "DATE"}, nil

	case FamilyDateTime:
		if opts.Strict && opts.Capabilities.StrictTablesAvailable {
			return textType(opts), nil
		}
		return SQLiteType{Name: "DATETIME"}, nil

	case FamilyTime:
		if opts.Strict && opts.Capabilities.StrictTablesAvailable {
			return textType(opts), nil
		}
		return SQLiteType{Name: "TIME"}, nil

	case FamilyBinary:
		return SQLiteType{Name: "BLOB"}, nil

	case FamilyJSON:
		if opts.JSONAsText || !opts.Capabilities.JSON1Available {
			return textType(opts), nil
		}
		if opts.Strict && opts.Capabilities.StrictTablesAvailable {
			// JSON has no STRICT-mode column type; downgraded to TEXT per §4.3.
			return textType(opts), nil
		}
		return SQLiteType{Name: "JSON"}, nil

	case FamilySpatial:
		return SQLiteType{Name: "BLOB"}, nil

	default:
		return SQLiteType{}, fmt.Errorf("%w: unrecognized MySQL type %q", xerr.ErrSchemaTranslation, st.Raw)
	}
}

func precisionOrDefault(p int) int {
	if p <= 0 {
		return 10
	}
	return p
}

func textType(opts Options) SQLiteType {
	return SQLiteType{Name: "TEXT", CollationApplicable: true}
}

// ColumnTypeClause renders the full "TYPE [COLLATE X]" suffix for a column
// definition, honoring the §4.3 rule that COLLATE is appended only to
// TEXT-affine columns and only when it differs from SQLite's implicit
// BINARY default.
func (t SQLiteType) ColumnTypeClause(collation string) string {
	if !t.CollationApplicable || collation == "" || collation == "BINARY" {
		return t.Name
	}
	return t.Name + " COLLATE " + collation
}
