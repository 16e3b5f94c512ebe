// Package render writes command results as plain text, JSON or terminal tables.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format selects how results are written.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat reads text, json or table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatTable:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or table)", s)
}

// JSON writes v indented, followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// MaxCellWidth caps every table cell.
const MaxCellWidth = 48

// Table is a list of rows where each row is either fine or failed. Failed rows
// are drawn in red and fine rows in green when Color is set.
type Table struct {
	Header []string
	Rows   [][]string
	Failed []bool
	Width  int
	Color  bool
}

// Append adds a row.
func (t *Table) Append(failed bool, cells ...string) {
	t.Rows = append(t.Rows, cells)
	t.Failed = append(t.Failed, failed)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	if t.Width > 0 {
		tw.SetAllowedRowLength(t.Width)
	}

	header := make(table.Row, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	tw.AppendHeader(header)

	for i, cells := range t.Rows {
		paint := fmt.Sprint
		if t.Color {
			paint = text.FgGreen.Sprint
			if t.Failed[i] {
				paint = text.FgHiRed.Sprint
			}
		}
		row := make(table.Row, len(cells))
		for j, c := range cells {
			row[j] = paint(Truncate(Quote(c), MaxCellWidth))
		}
		tw.AppendRow(row)
	}
	tw.Render()
}
