// query.go executes the generated SQL and materializes its result.
//
// Errors are returned, never logged or printed; the caller decides how
// to surface them.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrEmptyQuery is returned when there is no statement to run.
	ErrEmptyQuery = errors.New("empty query")

	// ErrStatementNotAllowed is returned by the read-only guard.
	ErrStatementNotAllowed = errors.New("only a single SELECT / WITH statement is allowed in read-only mode")
)

// Execute runs query and returns the complete result held in memory.
// Any statement type is accepted.
func Execute(ctx context.Context, q Querier, query string) (*ResultTable, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	result := &ResultTable{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result.Rows = append(result.Rows, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// writeKeywords are rejected anywhere in a read-only query, outside of
// string literals, quoted identifiers and comments.
var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "merge": true,
	"truncate": true, "drop": true, "alter": true, "create": true,
	"grant": true, "revoke": true, "copy": true, "call": true,
	"vacuum": true, "attach": true, "detach": true,
}

// CheckReadOnly is a fast pre-filter for read-only mode: a single
// statement starting with SELECT or WITH and naming no write keyword.
// Literals, quoted identifiers and comments are ignored. The database
// enforces read-only itself in DB.Execute.
func CheckReadOnly(query string) error {
	stmt := strings.TrimSpace(maskQuoted(query))
	stmt = strings.TrimRight(stmt, "; \t\r\n")
	if stmt == "" {
		return ErrEmptyQuery
	}
	if strings.Contains(stmt, ";") {
		return ErrStatementNotAllowed
	}
	words := strings.FieldsFunc(strings.ToLower(stmt), func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if len(words) == 0 || (words[0] != "select" && words[0] != "with") {
		return ErrStatementNotAllowed
	}
	for _, w := range words {
		if writeKeywords[w] {
			return ErrStatementNotAllowed
		}
	}
	return nil
}

// maskQuoted blanks out comments, string literals and quoted
// identifiers so only SQL keywords and punctuation remain.
func maskQuoted(query string) string {
	var sb strings.Builder
	sb.Grow(len(query))
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '-' && strings.HasPrefix(query[i:], "--"):
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			sb.WriteByte(' ')
			i += end
		case c == '/' && strings.HasPrefix(query[i:], "/*"):
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return sb.String()
			}
			sb.WriteByte(' ')
			i += end + 4
		case c == '\'' || c == '"':
			// Doubled quotes escape themselves in both forms.
			j := i + 1
			for j < len(query) {
				if query[j] == c {
					if j+1 < len(query) && query[j+1] == c {
						j += 2
						continue
					}
					break
				}
				j++
			}
			sb.WriteString(" x ")
			i = j + 1
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}
