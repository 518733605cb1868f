// Package htmldoc parses an HTML reference page into a model.Document: its
// headings and its recognized data tables, in document order.
package htmldoc

import (
	"errors"
	"fmt"
)

// DefaultTableClass is the class that marks a data table on MediaWiki pages.
const DefaultTableClass = "wikitable"

// Span limits follow the HTML table processing model.
const (
	maxColSpan = 1000
	maxRowSpan = 65534
)

var (
	// ErrNoRows is reported for a table without any row containing cells.
	ErrNoRows = errors.New("table has no rows")

	// ErrInvalidSpan is reported for a rowspan or colspan that is not a
	// non-negative integer.
	ErrInvalidSpan = errors.New("invalid span attribute")
)

// DocumentParseError reports that the input could not be parsed into a tree.
// It is fatal for a run.
type DocumentParseError struct {
	Err error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parsing document: %v", e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// TableParseError reports that one table could not be turned into a grid.
// The table is left out of the document and the parse continues.
type TableParseError struct {
	// Ordinal is the table's place among all marker-matching tables.
	Ordinal int
	Err     error
}

func (e *TableParseError) Error() string {
	return fmt.Sprintf("table #%d: %v", e.Ordinal, e.Err)
}

func (e *TableParseError) Unwrap() error { return e.Err }

// Options controls which tables are recognized.
type Options struct {
	// TableClass is the class a <table> must carry to be recognized.
	// An empty TableClass recognizes every table.
	TableClass string
}

// Option configures Parse.
type Option func(*Options)

// WithTableClass sets the class marker for data tables.
func WithTableClass(class string) Option {
	return func(o *Options) {
		o.TableClass = class
	}
}

func defaultOptions() Options {
	return Options{TableClass: DefaultTableClass}
}

// rawCell is a td or th before span expansion.
type rawCell struct {
	Text     string
	IsHeader bool
	RowSpan  int
	ColSpan  int
}

// rawRow is a tr before span expansion.
type rawRow struct {
	Cells  []rawCell
	InHead bool
}
