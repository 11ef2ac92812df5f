// Package capability probes the destination SQLite build for the optional
// features the DDL emitter and type translator need to know about before
// they run: JSON1 and STRICT tables.
package capability

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Capabilities is a pure snapshot of what the destination SQLite build supports.
type Capabilities struct {
	JSON1Available        bool
	StrictTablesAvailable bool
	SQLiteVersion         string
}

// strictTablesMinVersion is the first SQLite release (3.37.0) that
// understands the STRICT table keyword.
var strictTablesMinVersion = [3]int{3, 37, 0}

// Probe queries the destination connection's compile-time options and
// version exactly once. It is a pure function of the connection: calling it
// twice against the same *sql.DB yields the same result.
func Probe(ctx context.Context, db *sql.DB) (Capabilities, error) {
	version, err := sqliteVersion(ctx, db)
	if err != nil {
		return Capabilities{}, fmt.Errorf("capability probe: reading sqlite_version(): %w", err)
	}

	json1, err := hasCompileOption(ctx, db, "ENABLE_JSON1")
	if err != nil {
		return Capabilities{}, fmt.Errorf("capability probe: reading compile_options: %w", err)
	}

	return Capabilities{
		JSON1Available:        json1 || jsonAlwaysBuiltin(version),
		StrictTablesAvailable: versionAtLeast(version, strictTablesMinVersion),
		SQLiteVersion:         version,
	}, nil
}

func sqliteVersion(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

// jsonAlwaysBuiltin reports whether the running SQLite folds JSON1 into
// core (3.38.0+), where it no longer appears in compile_options at all.
func jsonAlwaysBuiltin(version string) bool {
	return versionAtLeast(version, [3]int{3, 38, 0})
}

func hasCompileOption(ctx context.Context, db *sql.DB, option string) (bool, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA compile_options")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var opt string
		if err := rows.Scan(&opt); err != nil {
			return false, err
		}
		if strings.EqualFold(opt, option) || strings.HasPrefix(strings.ToUpper(opt), option+"=") {
			return true, nil
		}
	}
	return false, rows.Err()
}

func versionAtLeast(version string, min [3]int) bool {
	parts := strings.SplitN(version, ".", 3)
	var got [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return false
		}
		got[i] = n
	}
	for i := 0; i < 3; i++ {
		if got[i] != min[i] {
			return got[i] > min[i]
		}
	}
	return true
}
