package mysql

import (
	"context"
	"database/sql"
	"strings"
)

// Dialect names the source server flavor, used only to choose the right
// transient-error substrings in internal/stream's reconnect logic; every
// catalog query in this package is portable across all three.
type Dialect string

const (
	DialectMySQL   Dialect = "mysql"
	DialectMariaDB Dialect = "mariadb"
	DialectTiDB    Dialect = "tidb"
)

// DetectDialect inspects version_comment to distinguish MySQL, MariaDB, and
// TiDB, and returns the server's numeric version with any vendor suffix
// stripped (e.g. "8.0.36-log" -> "8.0.36").
func DetectDialect(ctx context.Context, db *sql.DB) (Dialect, string, error) {
	var varName, comment string
	if err := db.QueryRowContext(ctx, "SHOW VARIABLES LIKE 'version_comment'").Scan(&varName, &comment); err != nil {
		return "", "", err
	}

	lower := strings.ToLower(comment)
	version := getVersion(ctx, db)

	switch {
	case strings.Contains(lower, "mariadb"):
		return DialectMariaDB, version, nil
	case strings.Contains(lower, "tidb"):
		return DialectTiDB, version, nil
	default:
		return DialectMySQL, version, nil
	}
}

func getVersion(ctx context.Context, db *sql.DB) string {
	var version string
	_ = db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version)
	if idx := strings.Index(version, "-"); idx > 0 {
		version = version[:idx]
	}
	return version
}
