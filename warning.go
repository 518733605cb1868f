package wikimelt

import (
	"fmt"
	"strings"

	"github.com/tsawler/wikimelt/pipeline"
)

// WarningKind classifies a Warning.
type WarningKind int

const (
	// WarningTableNotParsed marks a table that matched the table class but
	// could not be turned into a grid.
	WarningTableNotParsed WarningKind = iota

	// WarningNoIdentifierColumn marks a table in which no column held a
	// target identifier.
	WarningNoIdentifierColumn
)

func (k WarningKind) String() string {
	switch k {
	case WarningTableNotParsed:
		return "table not parsed"
	case WarningNoIdentifierColumn:
		return "no identifier column"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal problem met during extraction.
type Warning struct {
	Kind WarningKind

	// Table is the table index for skipped tables, or the discovery
	// ordinal for tables that could not be parsed.
	Table   int
	Heading string
	Message string
	Err     error
}

func (w Warning) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "table %d", w.Table)
	if w.Heading != "" {
		fmt.Fprintf(&sb, " (%s)", w.Heading)
	}
	sb.WriteString(": ")
	sb.WriteString(w.Message)
	return sb.String()
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func warningsFromReport(r *pipeline.Report) []Warning {
	if r == nil {
		return nil
	}

	var warnings []Warning
	for _, f := range r.Failures {
		warnings = append(warnings, Warning{
			Kind:    WarningTableNotParsed,
			Table:   f.Ordinal,
			Message: fmt.Sprint(f.Err),
			Err:     f.Err,
		})
	}
	for _, s := range r.Skipped {
		warnings = append(warnings, Warning{
			Kind:    WarningNoIdentifierColumn,
			Table:   s.TableIndex,
			Heading: s.Heading,
			Message: fmt.Sprint(s.Err),
			Err:     s.Err,
		})
	}
	return warnings
}
