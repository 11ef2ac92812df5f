package translate

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ColumnOverride pins an explicit SQLite type for one named column,
// bypassing the generic translator for cases an operator wants to control
// directly (see SPEC_FULL.md §11.3).
type ColumnOverride struct {
	Table      string `toml:"table"`
	Column     string `toml:"column"`
	SQLiteType string `toml:"sqlite_type"`
	Collation  string `toml:"collation"`
}

type overridesFile struct {
	Column []ColumnOverride `toml:"column"`
}

// Overrides indexes the parsed override file by "table.column" for O(1)
// lookup from the DDL emitter.
type Overrides struct {
	byKey map[string]ColumnOverride
}

// LoadOverrides parses a --column-overrides TOML file. A missing path
// yields an empty, no-op Overrides rather than an error.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return &Overrides{byKey: map[string]ColumnOverride{}}, nil
	}
	var parsed overridesFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return nil, fmt.Errorf("parsing column overrides %s: %w", path, err)
	}
	o := &Overrides{byKey: make(map[string]ColumnOverride, len(parsed.Column))}
	for _, c := range parsed.Column {
		o.byKey[c.Table+"."+c.Column] = c
	}
	return o, nil
}

// Lookup returns the override for table.column, if any.
func (o *Overrides) Lookup(table, column string) (ColumnOverride, bool) {
	if o == nil {
		return ColumnOverride{}, false
	}
	c, ok := o.byKey[table+"."+column]
	return c, ok
}
