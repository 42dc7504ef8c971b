// Package csvimport is the CSV import collaborator added on top of the
// concurrency core: a schema loader, a filename-convention file discoverer,
// and a driver that fans one task per data file out through the
// bounded-concurrency driver (C7), grounded on
// internal/cmd/loader.go's CSV-reading style.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ColumnType is one of the CSV schema's supported column types.
type ColumnType int

const (
	// String columns are read verbatim.
	String ColumnType = iota
	// Long columns parse as a 64-bit integer.
	Long
	// Double columns parse as a 64-bit float.
	Double
	// Boolean columns parse as true/false.
	Boolean
)

func (t ColumnType) String() string {
	switch t {
	case String:
		return "string"
	case Long:
		return "long"
	case Double:
		return "double"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

func parseColumnType(s string) (ColumnType, error) {
	switch s {
	case "string":
		return String, nil
	case "long":
		return Long, nil
	case "double":
		return Double, nil
	case "boolean":
		return Boolean, nil
	default:
		return 0, fmt.Errorf("unsupported column type %q", s)
	}
}

// ColumnSpec names one column and its declared type.
type ColumnSpec struct {
	Name string
	Type ColumnType
}

// Schema is the ordered column list loaded from a "*-header.csv" file.
type Schema struct {
	Columns []ColumnSpec
}

// ColumnNames returns the schema's column names in declared order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// LoadSchema reads a header CSV file of "name,type" rows (one per column,
// plus a "name,type" title row) into a Schema.
func LoadSchema(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schema header %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	// Skip the "name,type" title row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading header title row in %s: %w", path, err)
	}

	var columns []ColumnSpec
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading header row in %s: %w", path, err)
		}
		colType, err := parseColumnType(record[1])
		if err != nil {
			return nil, fmt.Errorf("column %q in %s: %w", record[0], path, err)
		}
		columns = append(columns, ColumnSpec{Name: record[0], Type: colType})
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("schema header %s declares no columns", path)
	}
	return &Schema{Columns: columns}, nil
}
