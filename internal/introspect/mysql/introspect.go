// Package mysql introspects a MySQL/MariaDB/TiDB source database's catalog
// (information_schema) into the engine's core schema model. It issues one
// query set per table: columns, indexes, and foreign keys, mirroring the
// catalog-walk shape of the schema-diff tool this engine descends from.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"mysql2sqlite/internal/core"
)

// introspectCtx threads the context and connection through the per-table
// helper functions without widening every signature.
type introspectCtx struct {
	ctx context.Context
	db  *sql.DB
}

// Introspecter walks one source database's catalog table by table.
type Introspecter struct {
	db *sql.DB
}

// New constructs an Introspecter bound to an open source connection.
func New(db *sql.DB) *Introspecter {
	return &Introspecter{db: db}
}

// Tables returns the names of every base table (and, when includeViews is
// set, every view) in the connection's current database, in catalog order.
func (in *Introspecter) Tables(ctx context.Context, includeViews bool) ([]string, error) {
	tableType := "'BASE TABLE'"
	if includeViews {
		tableType = "'BASE TABLE', 'VIEW'"
	}
	rows, err := in.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type IN (%s)
		ORDER BY table_name
	`, tableType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Table introspects one table's full shape: columns, primary key, secondary
// indexes, and foreign keys.
func (in *Introspecter) Table(ctx context.Context, name string) (*core.TableDescriptor, error) {
	ic := &introspectCtx{ctx: ctx, db: in.db}

	kind, err := tableKind(ic, name)
	if err != nil {
		return nil, err
	}

	t := &core.TableDescriptor{Name: name, Kind: kind}

	if err := introspectColumns(ic, t); err != nil {
		return nil, fmt.Errorf("introspecting columns of %s: %w", name, err)
	}
	if err := introspectIndexes(ic, t); err != nil {
		return nil, fmt.Errorf("introspecting indexes of %s: %w", name, err)
	}
	if kind == core.TableKindBase {
		if err := introspectForeignKeys(ic, t); err != nil {
			return nil, fmt.Errorf("introspecting foreign keys of %s: %w", name, err)
		}
	}

	for i := range t.Indexes {
		if t.Indexes[i].Kind == core.IndexPrimary {
			pk := t.Indexes[i]
			t.PrimaryKey = &pk
		}
	}

	return t, nil
}

func tableKind(ic *introspectCtx, name string) (core.TableKind, error) {
	var tableType string
	row := ic.db.QueryRowContext(ic.ctx, `
		SELECT table_type FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?
	`, name)
	if err := row.Scan(&tableType); err != nil {
		return "", err
	}
	if tableType == "VIEW" {
		return core.TableKindView, nil
	}
	return core.TableKindBase, nil
}
