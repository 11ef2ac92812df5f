package mysql

import (
	"database/sql"
	"strings"

	"mysql2sqlite/internal/core"
)

func introspectColumns(ic *introspectCtx, t *core.TableDescriptor) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.character_set_name,
			c.collation_name,
			c.generation_expression
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, colType, nullable, extra, charset, collation sql.NullString
		var defaultVal, genExpr sql.NullString
		if err := rows.Scan(&name, &colType, &nullable, &defaultVal, &extra, &charset, &collation, &genExpr); err != nil {
			return err
		}

		col := core.ColumnDescriptor{
			Name:          name.String,
			RawType:       colType.String,
			Nullable:      nullable.String == "YES",
			AutoIncrement: strings.Contains(extra.String, "auto_increment"),
			Charset:       charset.String,
			Collation:     collation.String,
			Generated:     genExpr.Valid && genExpr.String != "",
		}

		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}

		t.Columns = append(t.Columns, col)
	}

	return rows.Err()
}
