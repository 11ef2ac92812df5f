package mysql

import (
	"database/sql"
	"strings"

	"mysql2sqlite/internal/core"
)

func introspectIndexes(ic *introspectCtx, t *core.TableDescriptor) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			i.index_name,
			i.non_unique,
			i.index_type,
			GROUP_CONCAT(i.column_name ORDER BY i.seq_in_index SEPARATOR ',')
		FROM information_schema.statistics i
		WHERE i.table_schema = DATABASE() AND i.table_name = ?
		GROUP BY i.index_name, i.non_unique, i.index_type
		ORDER BY i.index_name
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var indexName, unique, indexType, columns sql.NullString
		if err := rows.Scan(&indexName, &unique, &indexType, &columns); err != nil {
			return err
		}

		kind := core.IndexNormal
		switch {
		case indexName.String == "PRIMARY":
			kind = core.IndexPrimary
		case strings.EqualFold(indexType.String, "FULLTEXT"):
			kind = core.IndexFullText
		case strings.EqualFold(indexType.String, "SPATIAL"):
			kind = core.IndexSpatial
		case unique.String == "0":
			kind = core.IndexUnique
		}

		idx := core.IndexDescriptor{
			SourceName: indexName.String,
			Kind:       kind,
		}
		for _, col := range strings.Split(columns.String, ",") {
			idx.Columns = append(idx.Columns, core.IndexColumn{Name: col})
		}

		t.Indexes = append(t.Indexes, idx)
	}

	return rows.Err()
}
