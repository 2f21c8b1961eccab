package db

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ResultTable is a fully materialized query result.
type ResultTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Status summarizes the row count, psql style: "(3 rows)".
func (r *ResultTable) Status() string {
	n := len(r.Rows)
	return fmt.Sprintf("(%d row%s)", n, plural(n))
}

// Cells returns every row with each value formatted as text.
func (r *ResultTable) Cells() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		out[i] = cells
	}
	return out
}

// String renders the table as plain aligned text with a row index,
// the form embedded in the answer prompt:
//
//	     sum
//	0  105599
func (r *ResultTable) String() string {
	if len(r.Rows) == 0 {
		return "Empty result\nColumns: [" + strings.Join(r.Columns, ", ") + "]"
	}

	cells := r.Cells()
	indexWidth := len(strconv.Itoa(len(cells) - 1))
	widths := make([]int, len(r.Columns))
	for i, c := range r.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range cells {
		for i, v := range row {
			if i < len(widths) && utf8.RuneCountInString(v) > widths[i] {
				widths[i] = utf8.RuneCountInString(v)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", indexWidth))
	for i, c := range r.Columns {
		sb.WriteString("  ")
		sb.WriteString(padLeft(c, widths[i]))
	}
	for n, row := range cells {
		sb.WriteString("\n")
		sb.WriteString(padRight(strconv.Itoa(n), indexWidth))
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			sb.WriteString("  ")
			sb.WriteString(padLeft(v, widths[i]))
		}
	}
	return sb.String()
}

// FormatValue renders one scanned value as display text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func normalizeRow(values []any) []any {
	row := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case []byte:
			row[i] = string(val)
		case float64:
			row[i] = finite(val)
		case float32:
			if text, ok := finite(float64(val)).(string); ok {
				row[i] = text
			} else {
				row[i] = val
			}
		default:
			row[i] = val
		}
	}
	return row
}

// finite returns f unchanged, or NaN/Infinity/-Infinity as text, which
// JSON cannot carry as numbers.
func finite(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
