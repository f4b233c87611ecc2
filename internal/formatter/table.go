// Package formatter renders query results as aligned text tables for
// console output.
package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/openchi/chicagodata/internal/analysis"
)

const bannerWidth = 70

// TableFormatter formats query results as aligned column text.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// FormatAll writes every result in order, separated by banners.
func (f *TableFormatter) FormatAll(results []analysis.Result) error {
	for i := range results {
		if err := f.Format(&results[i]); err != nil {
			return err
		}
	}
	return nil
}

// Format writes one result set with its question banner, aligned
// rows, and a record count footer.
func (f *TableFormatter) Format(result *analysis.Result) error {
	banner := strings.Repeat("=", bannerWidth)
	_, _ = fmt.Fprintln(f.writer, banner)
	_, _ = fmt.Fprintf(f.writer, "PROBLEM %d: %s\n", result.Question.Number, result.Question.Title)
	_, _ = fmt.Fprintln(f.writer, banner)

	if len(result.Rows) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No results.")
		_, _ = fmt.Fprintln(f.writer)
		return nil
	}

	cells := renderCells(result)
	widths := columnWidths(result.Columns, cells)

	f.writeRow(result.Columns, widths)
	for _, row := range cells {
		f.writeRow(row, widths)
	}

	_, _ = fmt.Fprintf(f.writer, "\nTotal records: %d\n\n", len(result.Rows))
	return nil
}

func (f *TableFormatter) writeRow(cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = pad(cell, widths[i])
	}
	_, _ = fmt.Fprintln(f.writer, strings.TrimRight(strings.Join(parts, "  "), " "))
}

func renderCells(result *analysis.Result) [][]string {
	cells := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = FormatValue(v)
		}
	}
	return cells
}

func columnWidths(columns []string, cells [][]string) []int {
	widths := make([]int, len(columns))
	for i, name := range columns {
		widths[i] = len(name)
	}
	for _, row := range cells {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// FormatValue renders a single scanned cell for display. NULLs print
// as NULL; floats drop trailing zeros.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
