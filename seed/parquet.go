package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// ReadParquet decodes a Parquet file into the same untyped form as
// ReadCSV, so both formats share type inference. Nested columns are
// flattened to their dotted leaf path.
func ReadParquet(r io.Reader) (*Raw, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	schema := f.Schema()
	paths := schema.Columns()
	raw := &Raw{Header: make([]string, len(paths))}
	formats := make([]valueFormatter, len(paths))
	for i, path := range paths {
		raw.Header[i] = strings.Join(path, ".")
		formats[i] = formatString
		if leaf, ok := schema.Lookup(path...); ok {
			formats[i] = formatterFor(leaf.Node.Type())
		}
	}

	buf := make([]parquet.Row, 256)
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				raw.Records = append(raw.Records, parquetRecord(row, formats))
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close parquet rows: %w", err)
		}
	}
	return raw, nil
}

func parquetRecord(row parquet.Row, formats []valueFormatter) []string {
	record := make([]string, len(formats))
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(formats) || v.IsNull() {
			continue
		}
		record[col] = formats[col](v)
	}
	return record
}

// valueFormatter renders one physical value as the text ReadCSV would
// have produced for it.
type valueFormatter func(parquet.Value) string

func formatString(v parquet.Value) string { return v.String() }

// formatterFor renders DATE as 2006-01-02 and TIMESTAMP as RFC 3339 so
// that Infer types them as timestamps instead of numbers.
func formatterFor(t parquet.Type) valueFormatter {
	lt := t.LogicalType()
	switch {
	case lt == nil:
		return formatString
	case lt.Date != nil:
		return func(v parquet.Value) string {
			return time.Unix(int64(v.Int32())*86400, 0).UTC().Format(time.DateOnly)
		}
	case lt.Timestamp != nil:
		unit := lt.Timestamp.Unit
		return func(v parquet.Value) string {
			n := v.Int64()
			var ts time.Time
			switch {
			case unit.Millis != nil:
				ts = time.UnixMilli(n)
			case unit.Micros != nil:
				ts = time.UnixMicro(n)
			default:
				ts = time.Unix(0, n)
			}
			return ts.UTC().Format(time.RFC3339Nano)
		}
	}
	return formatString
}
