package wikimelt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/filter"
	"github.com/tsawler/wikimelt/format"
	"github.com/tsawler/wikimelt/htmldoc"
	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/pipeline"
	"github.com/tsawler/wikimelt/targets"
)

// Extractor provides a fluent interface for extracting records from a page.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	data     []byte
	format   format.Format
	doc      *model.Document
	loaded   bool

	options extractOptions

	// Accumulated error (fail-fast)
	err error
}

func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		data:     e.data,
		format:   e.format,
		doc:      e.doc,
		loaded:   e.loaded,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Targets sets the target identifiers. Matching ignores case and accents.
// An empty list makes every terminal operation fail with ErrEmptyTargets.
//
// Example:
//
//	ds, _, err := wikimelt.Open("page.html").Targets("México", "Perú").Dataset(ctx)
func (e *Extractor) Targets(names ...string) *Extractor {
	ne := e.clone()
	set, err := targets.New(names...)
	if err != nil {
		if ne.err == nil {
			ne.err = err
		}
		return ne
	}
	ne.options.targets = set
	return ne
}

// TargetSet sets an already built target set.
func (e *Extractor) TargetSet(set *targets.Set) *Extractor {
	ne := e.clone()
	if set == nil || set.Len() == 0 {
		if ne.err == nil {
			ne.err = ErrEmptyTargets
		}
		return ne
	}
	ne.options.targets = set
	return ne
}

// TableClass sets the class marking data tables. An empty class accepts
// every table.
func (e *Extractor) TableClass(class string) *Extractor {
	ne := e.clone()
	ne.options.tableClass = class
	return ne
}

// MetadataMarkers replaces the identifier-cell values that mark a row as
// metadata rather than data.
func (e *Extractor) MetadataMarkers(markers ...string) *Extractor {
	ne := e.clone()
	ne.options.markers = append([]string{}, markers...)
	return ne
}

// Sentinels replaces the values treated as missing. The empty string is
// always missing.
func (e *Extractor) Sentinels(sentinels ...string) *Extractor {
	ne := e.clone()
	ne.options.sentinels = append([]string{}, sentinels...)
	return ne
}

// HeadingLevels restricts heading context to the given levels (1-6).
// With no levels, every heading counts.
//
// Example:
//
//	wikimelt.Open("page.html").HeadingLevels(2, 3)
func (e *Extractor) HeadingLevels(levels ...int) *Extractor {
	ne := e.clone()
	ne.options.headingLevels = append([]int{}, levels...)
	return ne
}

// Classifier replaces the identifier-column heuristic's constants.
func (e *Extractor) Classifier(cfg classify.Config) *Extractor {
	ne := e.clone()
	if err := cfg.Validate(); err != nil {
		if ne.err == nil {
			ne.err = fmt.Errorf("classifier: %w", err)
		}
		return ne
	}
	ne.options.classifier = cfg
	return ne
}

// Concurrency sets how many tables are processed at once. Output order does
// not depend on it.
func (e *Extractor) Concurrency(n int) *Extractor {
	ne := e.clone()
	ne.options.concurrency = n
	return ne
}

// CanonicalIdentifiers reports identifiers in the target list's spelling
// instead of the page's.
func (e *Extractor) CanonicalIdentifiers() *Extractor {
	ne := e.clone()
	ne.options.canonical = true
	return ne
}

// Logger sets the logger for per-table diagnostics.
func (e *Extractor) Logger(l *slog.Logger) *Extractor {
	ne := e.clone()
	ne.options.logger = l
	return ne
}

// Progress registers a callback invoked after each processed table.
func (e *Extractor) Progress(fn func(done, total int)) *Extractor {
	ne := e.clone()
	ne.options.progress = fn
	return ne
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document parses the source and returns the document.
func (e *Extractor) Document() (*model.Document, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.doc != nil {
		return e.doc, nil
	}

	data, f, err := e.load()
	if err != nil {
		return nil, err
	}

	opts := []htmldoc.Option{htmldoc.WithTableClass(e.options.tableClass)}
	switch f {
	case format.ParseAPI:
		return htmldoc.ParseParseAPI(bytes.NewReader(data), opts...)
	default:
		return htmldoc.ParseBytes(data, opts...)
	}
}

// Dataset runs the extraction and returns the records.
// When no table produced a record, the empty dataset is returned together
// with ErrEmptyResult.
//
// Example:
//
//	ds, warnings, err := wikimelt.Open("page.html").Dataset(ctx)
//	if errors.Is(err, wikimelt.ErrEmptyResult) {
//	    log.Println(wikimelt.FormatWarnings(warnings))
//	}
func (e *Extractor) Dataset(ctx context.Context) (*model.Dataset, []Warning, error) {
	ds, report, err := e.run(ctx)
	return ds, warningsFromReport(report), err
}

// Report runs the extraction and returns its summary.
func (e *Extractor) Report(ctx context.Context) (*pipeline.Report, []Warning, error) {
	_, report, err := e.run(ctx)
	return report, warningsFromReport(report), err
}

// Run returns both the dataset and the report.
func (e *Extractor) Run(ctx context.Context) (*model.Dataset, *pipeline.Report, []Warning, error) {
	ds, report, err := e.run(ctx)
	return ds, report, warningsFromReport(report), err
}

// Pipeline returns the pipeline the extractor's options describe.
func (e *Extractor) Pipeline() (*pipeline.Pipeline, error) {
	if e.err != nil {
		return nil, e.err
	}
	return pipeline.New(e.options.targets, e.pipelineOptions()...), nil
}

func (e *Extractor) run(ctx context.Context) (*model.Dataset, *pipeline.Report, error) {
	doc, err := e.Document()
	if err != nil {
		return nil, nil, err
	}
	p, err := e.Pipeline()
	if err != nil {
		return nil, nil, err
	}
	return p.Run(ctx, doc)
}

func (e *Extractor) pipelineOptions() []pipeline.Option {
	o := e.options

	var fopts []filter.Option
	if o.markers != nil {
		fopts = append(fopts, filter.WithMetadataMarkers(o.markers...))
	}
	if o.sentinels != nil {
		fopts = append(fopts, filter.WithSentinels(o.sentinels...))
	}
	fopts = append(fopts, filter.WithCanonicalIdentifiers(o.canonical))

	opts := []pipeline.Option{
		pipeline.WithClassifier(o.classifier),
		pipeline.WithFilterOptions(fopts...),
		pipeline.WithConcurrency(o.concurrency),
		pipeline.WithLogger(o.logger),
		pipeline.WithProgress(o.progress),
	}
	if len(o.headingLevels) > 0 {
		opts = append(opts, pipeline.WithHeadingLevels(o.headingLevels...))
	}
	return opts
}

// load returns the raw source bytes and their format.
func (e *Extractor) load() ([]byte, format.Format, error) {
	if e.loaded {
		if e.data == nil {
			return nil, format.Unknown, ErrNoSource
		}
		return e.data, e.format, nil
	}
	if e.filename == "" {
		return nil, format.Unknown, ErrNoSource
	}

	data, err := os.ReadFile(e.filename)
	if err != nil {
		return nil, format.Unknown, fmt.Errorf("failed to open %s: %w", e.filename, err)
	}
	f := format.Resolve(e.filename, data)
	if f == format.Unknown {
		return nil, format.Unknown, fmt.Errorf("unsupported file format: %s", e.filename)
	}
	return data, f, nil
}
