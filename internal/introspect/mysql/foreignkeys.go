package mysql

import (
	"database/sql"

	"mysql2sqlite/internal/core"
)

// introspectForeignKeys completes the constraint walk the teacher tool left
// as a TODO: it joins key_column_usage (which columns, in what order) against
// referential_constraints (the ON UPDATE/ON DELETE actions), grouped by
// constraint name.
func introspectForeignKeys(ic *introspectCtx, t *core.TableDescriptor) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			k.constraint_name,
			k.column_name,
			k.referenced_table_name,
			k.referenced_column_name,
			k.ordinal_position,
			r.update_rule,
			r.delete_rule
		FROM information_schema.key_column_usage k
		JOIN information_schema.referential_constraints r
			ON r.constraint_schema = k.constraint_schema
			AND r.constraint_name = k.constraint_name
		WHERE k.table_schema = DATABASE()
			AND k.table_name = ?
			AND k.referenced_table_name IS NOT NULL
		ORDER BY k.constraint_name, k.ordinal_position
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := map[string]*core.ForeignKeyDescriptor{}
	var order []string

	for rows.Next() {
		var constraintName, columnName, refTable, refColumn string
		var ordinal int
		var updateRule, deleteRule sql.NullString
		if err := rows.Scan(&constraintName, &columnName, &refTable, &refColumn, &ordinal, &updateRule, &deleteRule); err != nil {
			return err
		}

		fk, ok := byName[constraintName]
		if !ok {
			fk = &core.ForeignKeyDescriptor{
				ConstraintName:  constraintName,
				ReferencedTable: refTable,
				OnUpdate:        referentialAction(updateRule.String),
				OnDelete:        referentialAction(deleteRule.String),
			}
			byName[constraintName] = fk
			order = append(order, constraintName)
		}
		fk.Columns = append(fk.Columns, columnName)
		fk.ReferencedColumns = append(fk.ReferencedColumns, refColumn)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		t.ForeignKeys = append(t.ForeignKeys, *byName[name])
	}
	return nil
}

func referentialAction(rule string) core.ReferentialAction {
	switch rule {
	case "CASCADE":
		return core.ActionCascade
	case "SET NULL":
		return core.ActionSetNull
	case "SET DEFAULT":
		return core.ActionSetDefault
	case "RESTRICT":
		return core.ActionRestrict
	default:
		return core.ActionNoAction
	}
}
