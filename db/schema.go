// schema.go reads the live table/column catalog and renders it as the
// text block that grounds the SQL prompt.
//
// The schema is never cached: every question reads the catalog again so
// that tables created or altered between questions are visible.
package db

import (
	"context"
	"fmt"
	"strings"
)

// Column is one column of a table, as reported by the catalog.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is one base table and its ordered columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the ordered schema description of one catalog schema.
type Schema struct {
	Tables []Table `json:"tables"`
}

const inspectQuery = `
		SELECT c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema
		  AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`

// Inspect returns every base table in schema with its columns, ordered
// by table name and column position.
func Inspect(ctx context.Context, q Querier, schema string) (Schema, error) {
	rows, err := q.QueryContext(ctx, inspectQuery, schema)
	if err != nil {
		return Schema{}, fmt.Errorf("read catalog: %w", err)
	}
	defer rows.Close()

	var result Schema
	for rows.Next() {
		var table string
		var col Column
		if err := rows.Scan(&table, &col.Name, &col.Type); err != nil {
			return Schema{}, fmt.Errorf("scan catalog row: %w", err)
		}
		n := len(result.Tables)
		if n == 0 || result.Tables[n-1].Name != table {
			result.Tables = append(result.Tables, Table{Name: table})
			n++
		}
		result.Tables[n-1].Columns = append(result.Tables[n-1].Columns, col)
	}
	if err := rows.Err(); err != nil {
		return Schema{}, fmt.Errorf("read catalog: %w", err)
	}
	return result, nil
}

// Text renders the schema as one line per table:
//
//	* data: (iso_code text, date timestamp without time zone, new_cases double precision)
func (s Schema) Text() string {
	if len(s.Tables) == 0 {
		return "(no tables found)\n"
	}
	var sb strings.Builder
	for _, t := range s.Tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name + " " + c.Type
		}
		fmt.Fprintf(&sb, "* %s: (%s)\n", t.Name, strings.Join(cols, ", "))
	}
	return sb.String()
}

// TableNames lists the table names in catalog order.
func (s Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}
