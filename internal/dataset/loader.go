package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError reports an unreadable CSV payload or a header that does
// not match the declared schema.
type ParseError struct {
	Dataset string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse dataset %s: %v", e.Dataset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load parses CSV text into a typed table using the fixed schema in
// spec. The first record is the header row; declared columns are
// located in it by their Header name. Numeric cells that fail to
// convert become nil (stored as SQL NULL) rather than failing the
// load. Records with a wrong field count are skipped.
func Load(spec Spec, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{Dataset: spec.TableName, Err: fmt.Errorf("reading header: %w", err)}
	}

	indexes, err := columnIndexes(spec, header)
	if err != nil {
		return nil, &ParseError{Dataset: spec.TableName, Err: err}
	}

	table := &Table{Spec: spec}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Dataset: spec.TableName, Err: err}
		}
		if len(record) != len(header) {
			continue
		}

		row := make([]any, len(spec.Columns))
		for i, col := range spec.Columns {
			row[i] = coerce(col.Type, record[indexes[i]])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// columnIndexes resolves each declared column to its position in the
// CSV header row.
func columnIndexes(spec Spec, header []string) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	indexes := make([]int, len(spec.Columns))
	for i, col := range spec.Columns {
		pos, ok := positions[col.Header]
		if !ok {
			return nil, fmt.Errorf("missing column %q in header", col.Header)
		}
		indexes[i] = pos
	}
	return indexes, nil
}

// coerce converts a raw CSV cell to the declared column type. Failed
// numeric conversions and empty cells become nil so aggregates skip
// them under standard NULL semantics.
func coerce(t ColumnType, raw string) any {
	value := strings.TrimSpace(raw)

	switch t {
	case Integer:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		// Some sources write integral columns as decimals (e.g. "25.0").
		if f, err := strconv.ParseFloat(value, 64); err == nil && f == float64(int64(f)) {
			return int64(f)
		}
		return nil
	case Float:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return nil
	default:
		return value
	}
}
