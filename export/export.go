// Package export writes a dataset as CSV, TSV, JSON or JSON Lines, with
// configurable column names.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/wikimelt/model"
)

// Format defines the available export formats
type Format int

const (
	// FormatCSV exports as comma-separated values
	FormatCSV Format = iota
	// FormatTSV exports as tab-separated values
	FormatTSV
	// FormatJSON exports as a JSON array
	FormatJSON
	// FormatJSONL exports as JSON Lines (one JSON object per line)
	FormatJSONL
)

// String returns a human-readable representation of the export format
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	case FormatJSONL:
		return "jsonl"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (f Format) FileExtension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatTSV:
		return ".tsv"
	case FormatJSON:
		return ".json"
	case FormatJSONL:
		return ".jsonl"
	default:
		return ".txt"
	}
}

// ParseFormat maps a format name to its Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	default:
		return FormatCSV, fmt.Errorf("unsupported export format: %q", name)
	}
}

// FormatFromExtension picks the format from a file name, defaulting to CSV.
func FormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

// Columns names the output column of each record field.
type Columns struct {
	Identifier     string
	Attribute      string
	Value          string
	TableIndex     string
	HeadingContext string
}

// DefaultColumns uses the record field names.
func DefaultColumns() Columns {
	return Columns{
		Identifier:     "Identifier",
		Attribute:      "Attribute",
		Value:          "Value",
		TableIndex:     "TableIndex",
		HeadingContext: "HeadingContext",
	}
}

// VocabularyColumns is the schema of the vocabulary differences dataset.
func VocabularyColumns() Columns {
	return Columns{
		Identifier:     "Country",
		Attribute:      "Concept",
		Value:          "LocalTerm",
		TableIndex:     "table_index",
		HeadingContext: "table_heading",
	}
}

// ParseColumns maps "default" or "vocabulary" to a column naming.
func ParseColumns(name string) (Columns, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultColumns(), nil
	case "vocabulary":
		return VocabularyColumns(), nil
	default:
		return Columns{}, fmt.Errorf("unknown column set: %q", name)
	}
}

// Names returns the column names in output order.
func (c Columns) Names() []string {
	return []string{c.Identifier, c.Attribute, c.Value, c.TableIndex, c.HeadingContext}
}

func (c Columns) row(r model.Record) []string {
	return []string{r.Identifier, r.Attribute, r.Value, strconv.Itoa(r.TableIndex), r.HeadingContext}
}

// Config holds configuration options for export
type Config struct {
	Format  Format
	Columns Columns

	// IncludeHeader includes the header row in CSV/TSV exports
	IncludeHeader bool

	// Delimiter overrides the CSV field delimiter. TSV always uses a tab.
	Delimiter rune

	// PrettyPrint enables pretty printing for JSON formats
	PrettyPrint bool
}

// DefaultConfig returns CSV with a header row and the default columns.
func DefaultConfig() Config {
	return Config{
		Format:        FormatCSV,
		Columns:       DefaultColumns(),
		IncludeHeader: true,
		Delimiter:     ',',
	}
}

// ConfigFor returns the default configuration for format.
func ConfigFor(format Format) Config {
	cfg := DefaultConfig()
	cfg.Format = format
	if format == FormatTSV {
		cfg.Delimiter = '\t'
	}
	return cfg
}

// Exporter writes datasets.
type Exporter struct {
	config Config
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config Config) *Exporter {
	if config.Columns == (Columns{}) {
		config.Columns = DefaultColumns()
	}
	return &Exporter{config: config}
}

// Export writes the dataset's records to w.
func (e *Exporter) Export(ds *model.Dataset, w io.Writer) error {
	var records []model.Record
	if ds != nil {
		records = ds.Records
	}

	switch e.config.Format {
	case FormatCSV, FormatTSV:
		return e.exportCSV(records, w)
	case FormatJSON:
		return e.exportJSON(records, w)
	case FormatJSONL:
		return e.exportJSONL(records, w)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes the dataset to filename, creating parent directories.
func (e *Exporter) ExportToFile(ds *model.Dataset, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := e.Export(ds, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportToString exports the dataset to a string
func (e *Exporter) ExportToString(ds *model.Dataset) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(ds, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) exportCSV(records []model.Record, w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	switch {
	case e.config.Format == FormatTSV:
		csvWriter.Comma = '\t'
	case e.config.Delimiter != 0:
		csvWriter.Comma = e.config.Delimiter
	}

	if e.config.IncludeHeader {
		if err := csvWriter.Write(e.config.Columns.Names()); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for i, r := range records {
		if err := csvWriter.Write(e.config.Columns.row(r)); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (e *Exporter) exportJSON(records []model.Record, w io.Writer) error {
	objects := make([]recordObject, len(records))
	for i, r := range records {
		objects[i] = recordObject{cols: e.config.Columns, rec: r}
	}

	encoder := json.NewEncoder(w)
	if e.config.PrettyPrint {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(objects)
}

func (e *Exporter) exportJSONL(records []model.Record, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if e.config.PrettyPrint {
		encoder.SetIndent("", "  ")
	}

	for i, r := range records {
		if err := encoder.Encode(recordObject{cols: e.config.Columns, rec: r}); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return nil
}

// recordObject encodes a record as a JSON object whose keys follow the
// configured column names and order.
type recordObject struct {
	cols Columns
	rec  model.Record
}

func (o recordObject) MarshalJSON() ([]byte, error) {
	fields := []struct {
		key   string
		value any
	}{
		{o.cols.Identifier, o.rec.Identifier},
		{o.cols.Attribute, o.rec.Attribute},
		{o.cols.Value, o.rec.Value},
		{o.cols.TableIndex, o.rec.TableIndex},
		{o.cols.HeadingContext, o.rec.HeadingContext},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
