// Package seed loads a public dataset into the connected database so
// there is something to ask questions about. By default it fetches the
// Our World in Data COVID-19 CSV into table "data".
//
// The whole file is decoded into memory before column types are
// inferred, so every value of a column is seen before its type is chosen.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the inferred storage type of a column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeDouble
	TypeTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Column is one column of a dataset.
type Column struct {
	Name string
	Type ColumnType
}

// Dataset is a decoded, typed table ready to load.
type Dataset struct {
	Columns []Column
	// Rows hold nil, string, float64 or time.Time values.
	Rows [][]any
}

// Raw is a decoded but untyped table.
type Raw struct {
	Header  []string
	Records [][]string
}

var timeLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// ReadCSV decodes a CSV stream whose first record is the header.
func ReadCSV(r io.Reader) (*Raw, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	raw := &Raw{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		raw.Records = append(raw.Records, record)
	}
	return raw, nil
}

// Infer chooses a type per column and converts every value. A column
// whose values all parse as dates becomes a timestamp (so does an empty
// column named "date"), one whose values all parse as numbers becomes a
// double, and anything else stays text. Empty strings are NULL.
func Infer(raw *Raw) (*Dataset, error) {
	if len(raw.Header) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}
	ds := &Dataset{Columns: make([]Column, len(raw.Header))}
	for i, name := range raw.Header {
		ds.Columns[i] = Column{Name: strings.TrimSpace(name), Type: inferColumn(name, raw.Records, i)}
	}

	ds.Rows = make([][]any, 0, len(raw.Records))
	for n, record := range raw.Records {
		if len(record) != len(ds.Columns) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", n+1, len(record), len(ds.Columns))
		}
		row := make([]any, len(record))
		for i, value := range record {
			v, err := convert(value, ds.Columns[i].Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n+1, ds.Columns[i].Name, err)
			}
			row[i] = v
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func inferColumn(name string, records [][]string, idx int) ColumnType {
	dates, numbers, values := 0, 0, 0
	for _, record := range records {
		if idx >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[idx])
		if v == "" {
			continue
		}
		values++
		if _, err := parseTime(v); err == nil {
			dates++
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numbers++
		}
	}
	switch {
	case values == 0:
		if strings.EqualFold(strings.TrimSpace(name), "date") {
			return TypeTimestamp
		}
		return TypeText
	case dates == values:
		return TypeTimestamp
	case numbers == values:
		return TypeDouble
	default:
		return TypeText
	}
}

func convert(value string, typ ColumnType) (any, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	switch typ {
	case TypeTimestamp:
		return parseTime(v)
	case TypeDouble:
		return strconv.ParseFloat(v, 64)
	default:
		return value, nil
	}
}

func parseTime(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
