package htmldoc

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/textnorm"
)

// parseTable turns a <table> element into a rectangular model.Table.
//
// Rows inside <thead>, and leading rows made only of <th> cells, become
// header levels. Every other row is a data row. Row and column spans are
// expanded so that a spanning cell's text appears in every slot it covers.
func parseTable(tableNode *html.Node) (*model.Table, error) {
	rows, err := collectRows(tableNode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	grid := expandSpans(rows)

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, ErrNoRows
	}

	headerCount := countHeaderRows(rows)

	var levels [][]string
	for i := 0; i < headerCount; i++ {
		levels = append(levels, pad(grid[i], width))
	}

	table := model.NewTable(flattenHeader(levels, width))
	table.HeaderLevels = levels
	for _, row := range grid[headerCount:] {
		table.AddRow(row)
	}

	return table, nil
}

// collectRows gathers the table's own rows in document order, without
// descending into nested tables.
func collectRows(tableNode *html.Node) ([]rawRow, error) {
	var rows []rawRow

	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead", "tbody", "tfoot":
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					row, err := parseRow(tr, c.Data == "thead")
					if err != nil {
						return nil, err
					}
					if len(row.Cells) > 0 {
						rows = append(rows, row)
					}
				}
			}
		case "tr":
			row, err := parseRow(c, false)
			if err != nil {
				return nil, err
			}
			if len(row.Cells) > 0 {
				rows = append(rows, row)
			}
		}
	}

	return rows, nil
}

// parseRow parses the td/th children of a tr.
func parseRow(tr *html.Node, inHead bool) (rawRow, error) {
	row := rawRow{InHead: inHead}

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}

		rowSpan, err := parseSpan(c, "rowspan", maxRowSpan)
		if err != nil {
			return rawRow{}, err
		}
		colSpan, err := parseSpan(c, "colspan", maxColSpan)
		if err != nil {
			return rawRow{}, err
		}

		row.Cells = append(row.Cells, rawCell{
			Text:     getTextContent(c),
			IsHeader: inHead || c.Data == "th",
			RowSpan:  rowSpan,
			ColSpan:  colSpan,
		})
	}

	return row, nil
}

// parseSpan reads a span attribute. A missing attribute is 1. A rowspan of 0
// covers the rest of the table; a colspan of 0 is treated as 1.
func parseSpan(n *html.Node, key string, limit int) (int, error) {
	val := strings.TrimSpace(getAttr(n, key))
	if val == "" {
		return 1, nil
	}

	span, err := strconv.Atoi(val)
	if err != nil || span < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidSpan, key, val)
	}

	switch {
	case span == 0 && key == "rowspan":
		return limit, nil
	case span == 0:
		return 1, nil
	case span > limit:
		return limit, nil
	}
	return span, nil
}

// carry is a cell that still covers slots in the rows below.
type carry struct {
	text      string
	remaining int
}

// expandSpans lays the rows out on a grid, copying spanning cells into every
// slot they cover.
func expandSpans(rows []rawRow) [][]string {
	grid := make([][]string, 0, len(rows))
	var carries []carry

	takeCarry := func(col int) (string, bool) {
		if col < len(carries) && carries[col].remaining > 0 {
			carries[col].remaining--
			return carries[col].text, true
		}
		return "", false
	}

	for _, row := range rows {
		var out []string
		col := 0

		for _, cell := range row.Cells {
			for {
				text, ok := takeCarry(col)
				if !ok {
					break
				}
				out = append(out, text)
				col++
			}

			for k := 0; k < cell.ColSpan; k++ {
				out = append(out, cell.Text)
				// A colspan overlapping an earlier rowspan takes the slot;
				// the rowspan still spends this row.
				takeCarry(col)
				if cell.RowSpan > 1 {
					for len(carries) <= col {
						carries = append(carries, carry{})
					}
					carries[col] = carry{text: cell.Text, remaining: cell.RowSpan - 1}
				}
				col++
			}
		}

		// Spans from earlier rows may still cover slots right of the last cell.
		last := -1
		for i := col; i < len(carries); i++ {
			if carries[i].remaining > 0 {
				last = i
			}
		}
		for ; col <= last; col++ {
			text, _ := takeCarry(col)
			out = append(out, text)
		}

		grid = append(grid, out)
	}

	return grid
}

// countHeaderRows returns how many leading rows are header rows: rows from
// <thead> or rows whose cells are all <th>.
func countHeaderRows(rows []rawRow) int {
	n := 0
	for _, row := range rows {
		if !row.InHead && !allHeaderCells(row) {
			break
		}
		n++
	}
	return n
}

func allHeaderCells(row rawRow) bool {
	for _, cell := range row.Cells {
		if !cell.IsHeader {
			return false
		}
	}
	return len(row.Cells) > 0
}

// flattenHeader joins the header levels of each column into one label.
// A label repeated on consecutive levels, as produced by a rowspan, is kept
// once. Without header levels the labels are the column ordinals.
func flattenHeader(levels [][]string, width int) []string {
	labels := make([]string, width)

	for col := 0; col < width; col++ {
		if len(levels) == 0 {
			labels[col] = strconv.Itoa(col)
			continue
		}

		var parts []string
		for _, level := range levels {
			part := textnorm.Clean(level[col])
			if part == "" {
				continue
			}
			if len(parts) > 0 && parts[len(parts)-1] == part {
				continue
			}
			parts = append(parts, part)
		}
		labels[col] = textnorm.Clean(strings.Join(parts, " "))
	}

	return labels
}

// pad returns row extended with empty cells to width.
func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
