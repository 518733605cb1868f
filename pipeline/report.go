package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/wikimelt/model"
)

// Report summarizes a run. It is observability output only.
type Report struct {
	TablesDiscovered  int
	TablesParsed      int
	TablesWithRecords int

	RecordsByIdentifier map[string]int
	UniqueHeadings      []string

	// Tables holds every table's result in table order.
	Tables []TableResult

	// Skipped holds the tables without an identifier column.
	Skipped []TableResult

	// Failures holds the tables that could not be parsed.
	Failures []model.TableFailure
}

func newReport(doc *model.Document, results []TableResult, dataset *model.Dataset) *Report {
	r := &Report{
		TablesDiscovered:    doc.Discovered,
		TablesParsed:        len(doc.Tables),
		RecordsByIdentifier: dataset.CountByIdentifier(),
		UniqueHeadings:      dataset.Headings(),
		Tables:              results,
		Failures:            doc.Failures,
	}

	// Documents built by hand may not count discovery.
	if seen := len(doc.Tables) + len(doc.Failures); r.TablesDiscovered < seen {
		r.TablesDiscovered = seen
	}

	for _, res := range results {
		if res.Err != nil {
			r.Skipped = append(r.Skipped, res)
		}
		if len(res.Records) > 0 {
			r.TablesWithRecords++
		}
	}

	return r
}

// Identifiers returns the identifiers with records, sorted.
func (r *Report) Identifiers() []string {
	ids := make([]string, 0, len(r.RecordsByIdentifier))
	for id := range r.RecordsByIdentifier {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// String renders the counts the way the CLI prints them.
func (r *Report) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Tables discovered: %d\n", r.TablesDiscovered)
	fmt.Fprintf(&sb, "Tables parsed: %d\n", r.TablesParsed)
	fmt.Fprintf(&sb, "Tables with records: %d\n", r.TablesWithRecords)
	fmt.Fprintf(&sb, "Unique headings: %d\n", len(r.UniqueHeadings))

	total := 0
	for _, n := range r.RecordsByIdentifier {
		total += n
	}
	fmt.Fprintf(&sb, "Records: %d\n", total)
	for _, id := range r.Identifiers() {
		fmt.Fprintf(&sb, "  %s: %d\n", id, r.RecordsByIdentifier[id])
	}

	return sb.String()
}
