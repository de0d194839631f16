package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"pg-spatial/pkg/column"
)

// Column is a spatial column of a table.
type Column struct {
	Name string      `json:"name"`
	Spec column.Spec `json:"spec"`
}

const spatialColumnsQuery = `
SELECT a.attname, t.typname, format_type(a.atttypid, a.atttypmod)
FROM pg_attribute a
JOIN pg_type t ON t.oid = a.atttypid
WHERE a.attrelid = $1::regclass
  AND a.attnum > 0
  AND NOT a.attisdropped
  AND t.typname IN ('geometry', 'geography')
ORDER BY a.attnum`

// SpatialColumns lists the geometry and geography columns of table in
// declaration order. table may be schema-qualified.
func SpatialColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, spatialColumnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query spatial columns of %s: %w", table, err)
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var name, typeName, formatted string
		if err := rows.Scan(&name, &typeName, &formatted); err != nil {
			return nil, fmt.Errorf("failed to scan spatial column of %s: %w", table, err)
		}

		col, err := columnFromRow(name, typeName, formatted)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read spatial columns of %s: %w", table, err)
	}

	return out, nil
}

// columnFromRow builds a Column from pg_type.typname and format_type output.
func columnFromRow(name, typeName, formatted string) (Column, error) {
	spec, err := ParseColumn(formatted, typeName == "geography")
	if err != nil {
		return Column{}, fmt.Errorf("column %s: %w", name, err)
	}
	return Column{Name: name, Spec: spec}, nil
}
