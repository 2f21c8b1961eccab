package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink replaces a table with the contents of a dataset.
type Sink interface {
	Load(ctx context.Context, table string, ds *Dataset) (int64, error)
}

// PostgresSink loads through COPY in one transaction.
type PostgresSink struct {
	Pool *pgxpool.Pool
}

func (s *PostgresSink) Load(ctx context.Context, table string, ds *Dataset) (int64, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range replaceTableDDL(table, ds, postgresTypes, quotePostgres) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("prepare table %s: %w", table, err)
		}
	}

	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		names[i] = c.Name
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, names, pgx.CopyFromRows(ds.Rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// SQLSink loads through batched multi-row INSERTs over database/sql.
// It is used for DuckDB.
type SQLSink struct {
	DB        *sql.DB
	BatchSize int
}

func (s *SQLSink) Load(ctx context.Context, table string, ds *Dataset) (int64, error) {
	batch := s.BatchSize
	if batch <= 0 {
		batch = 500
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range replaceTableDDL(table, ds, duckdbTypes, quoteIdent) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("prepare table %s: %w", table, err)
		}
	}

	var loaded int64
	for start := 0; start < len(ds.Rows); start += batch {
		end := min(start+batch, len(ds.Rows))
		stmt, args := insertBatch(table, ds.Columns, ds.Rows[start:end])
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return loaded, fmt.Errorf("insert rows %d-%d: %w", start+1, end, err)
		}
		loaded += int64(end - start)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return loaded, nil
}

var postgresTypes = map[ColumnType]string{
	TypeText:      "text",
	TypeDouble:    "double precision",
	TypeTimestamp: "timestamp",
}

var duckdbTypes = map[ColumnType]string{
	TypeText:      "VARCHAR",
	TypeDouble:    "DOUBLE",
	TypeTimestamp: "TIMESTAMP",
}

func replaceTableDDL(table string, ds *Dataset, types map[ColumnType]string, quote func(string) string) []string {
	cols := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = quote(c.Name) + " " + types[c.Type]
	}
	return []string{
		"DROP TABLE IF EXISTS " + quote(table),
		"CREATE TABLE " + quote(table) + " (" + strings.Join(cols, ", ") + ")",
	}
}

func insertBatch(table string, columns []Column, rows [][]any) (string, []any) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quoteIdent(c.Name)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quoteIdent(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(") VALUES ")

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholders)
		args = append(args, row...)
	}
	return sb.String(), args
}

func quotePostgres(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
