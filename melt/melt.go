// Package melt reshapes a wide table into long (identifier, attribute, value)
// tuples.
package melt

import "github.com/tsawler/wikimelt/model"

// Tuple is one cell of a melted table, before filtering.
type Tuple struct {
	Identifier string
	Attribute  string
	Value      string

	// Row and Column locate the value cell in the table's data rows.
	Row    int
	Column int
}

// Melt emits, for every data row not rejected by skip, one tuple per column
// other than idCol: the row's identifier cell, the column label and the
// cell. Tuples come out in row order, then column order. A nil skip keeps
// every row; an out of range idCol yields no tuples.
func Melt(table *model.Table, idCol int, skip func(row []string) bool) []Tuple {
	if table == nil || idCol < 0 || idCol >= table.ColCount() {
		return nil
	}

	cols := table.ColCount()
	tuples := make([]Tuple, 0, table.RowCount()*(cols-1))

	for r, row := range table.Rows {
		if skip != nil && skip(row) {
			continue
		}
		id := table.Cell(r, idCol)
		for c := 0; c < cols; c++ {
			if c == idCol {
				continue
			}
			tuples = append(tuples, Tuple{
				Identifier: id,
				Attribute:  table.Label(c),
				Value:      table.Cell(r, c),
				Row:        r,
				Column:     c,
			})
		}
	}

	return tuples
}

// Expected returns the tuple count Melt produces for keptRows rows of a
// table with cols columns.
func Expected(keptRows, cols int) int {
	if cols < 1 || keptRows < 0 {
		return 0
	}
	return keptRows * (cols - 1)
}
