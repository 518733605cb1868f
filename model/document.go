package model

import "fmt"

// Document is a parsed reference page.
type Document struct {
	// Title is the page title when the source provides one.
	Title string

	// Headings are ordered by Position.
	Headings []Heading

	// Tables are the successfully parsed data tables, ordered by Position.
	// Tables[i].Index == i.
	Tables []*Table

	// Failures records marker-matching tables that could not be parsed.
	Failures []TableFailure

	// Discovered counts every marker-matching table, parsed or not.
	Discovered int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		Headings: make([]Heading, 0),
		Tables:   make([]*Table, 0),
	}
}

// AddTable appends a parsed table and assigns its index.
func (d *Document) AddTable(t *Table) {
	t.Index = len(d.Tables)
	d.Tables = append(d.Tables, t)
}

// TableCount returns the number of parsed tables.
func (d *Document) TableCount() int {
	return len(d.Tables)
}

// Heading is a section heading and its place in the document.
type Heading struct {
	Level    int // 1-6
	Text     string
	Position int
}

func (h Heading) String() string {
	return fmt.Sprintf("h%d@%d %q", h.Level, h.Position, h.Text)
}

// TableFailure describes a table that matched the table marker but could not
// be parsed into a grid.
type TableFailure struct {
	// Ordinal is the table's place among all marker-matching tables.
	Ordinal  int
	Position int
	Err      error
}

func (f TableFailure) Error() string {
	return fmt.Sprintf("table at position %d: %v", f.Position, f.Err)
}

func (f TableFailure) Unwrap() error { return f.Err }
