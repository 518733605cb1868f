package model

import (
	"strings"
)

// Table is a recognized data table with a rectangular grid of cell texts.
type Table struct {
	// Index is the table's ordinal among parsed tables. It is assigned once
	// at discovery and never changes.
	Index int

	// Position is the document position of the <table> element.
	Position int

	// Class is the raw class attribute of the table element.
	Class string

	// Header holds one flattened label per column.
	Header []string

	// HeaderLevels holds the raw header rows before flattening, one entry per
	// level. It is empty when the table has no header row.
	HeaderLevels [][]string

	// Rows holds the data rows. Every row has len(Header) cells.
	Rows [][]string
}

// NewTable creates a table with the given header and an empty body.
func NewTable(header []string) *Table {
	return &Table{
		Header: header,
		Rows:   make([][]string, 0),
	}
}

// AddRow appends a data row, padding or truncating it to the column count.
func (t *Table) AddRow(cells []string) {
	row := make([]string, t.ColCount())
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns.
func (t *Table) ColCount() int {
	return len(t.Header)
}

// Cell returns the text at the given data row and column (0-indexed), or ""
// when either index is out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Label returns the label of column col, or "" when out of range.
func (t *Table) Label(col int) string {
	if col < 0 || col >= len(t.Header) {
		return ""
	}
	return t.Header[col]
}

// Column is a read-only view of one table column.
type Column struct {
	Index  int
	Label  string
	Values []string
}

// Column returns the view of column col. The second result is false when col
// is out of range.
func (t *Table) Column(col int) (Column, bool) {
	if col < 0 || col >= t.ColCount() {
		return Column{}, false
	}
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, col)
	}
	return Column{Index: col, Label: t.Header[col], Values: values}, true
}

// Columns returns a view of every column, left to right.
func (t *Table) Columns() []Column {
	cols := make([]Column, 0, t.ColCount())
	for i := 0; i < t.ColCount(); i++ {
		c, _ := t.Column(i)
		cols = append(cols, c)
	}
	return cols
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if t.ColCount() == 0 {
		return ""
	}

	var sb strings.Builder

	writeRow := func(cells []string) {
		for _, cell := range cells {
			sb.WriteString("| ")
			sb.WriteString(escapeMarkdown(cell))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(t.Header)
	for range t.Header {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")
	for _, row := range t.Rows {
		writeRow(row)
	}

	return sb.String()
}

// escapeMarkdown escapes characters that break markdown table cells.
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "\r", "")
	return strings.ReplaceAll(text, "\n", " ")
}
