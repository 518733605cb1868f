// Package pipeline composes heading lookup, column classification, melting
// and filtering into one run over a parsed document.
//
// Every table is processed by a pure function returning a TableResult; the
// run concatenates the results in table order. A table without an
// identifier column is skipped and reported, never fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/filter"
	"github.com/tsawler/wikimelt/headings"
	"github.com/tsawler/wikimelt/melt"
	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/targets"
)

// ErrEmptyResult is returned by Run when no table produced a record. The
// empty dataset and the report are still returned.
var ErrEmptyResult = errors.New("no table produced any record")

// ErrNilDocument is returned by Run for a nil document.
var ErrNilDocument = errors.New("nil document")

// Pipeline holds the configured components. It is immutable after New and
// may run several documents concurrently.
type Pipeline struct {
	targets     *targets.Set
	classifier  *classify.Classifier
	filter      *filter.Filter
	filterOpts  []filter.Option
	headingOpts []headings.Option
	concurrency int
	logger      *slog.Logger
	progress    func(done, total int)
}

// New returns a pipeline matching identifiers against set. A nil set makes
// Run fail with targets.ErrEmptyTargets.
func New(set *targets.Set, opts ...Option) *Pipeline {
	p := &Pipeline{
		targets:     set,
		classifier:  classify.New(classify.DefaultConfig()),
		concurrency: 1,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.filter = filter.New(set, p.filterOpts...)
	return p
}

// TableResult is the outcome of processing one table.
type TableResult struct {
	TableIndex int
	Heading    string

	// Column is the identifier column, or -1 when none was found.
	Column int
	Scores []classify.ColumnScore

	Records []model.Record

	// Err is nil, classify.ErrNoIdentifierColumn, or
	// targets.ErrEmptyTargets for a pipeline built without targets.
	Err error
}

// ProcessTable classifies, melts and filters one table. It reads only the
// table, the heading index and the pipeline's immutable configuration.
func (p *Pipeline) ProcessTable(table *model.Table, idx *headings.Index) TableResult {
	res := TableResult{
		TableIndex: table.Index,
		Heading:    idx.NearestPreceding(table.Position),
		Column:     -1,
	}
	if p.targets == nil {
		res.Err = targets.ErrEmptyTargets
		return res
	}

	res.Scores = p.classifier.Score(table, p.targets)
	col, err := classify.Best(res.Scores)
	if err != nil {
		res.Err = err
		return res
	}
	res.Column = col

	tuples := melt.Melt(table, col, func(row []string) bool {
		return p.filter.IsMetadataRow(row[col])
	})
	res.Records = p.filter.Records(tuples, table.Index, res.Heading)

	return res
}

// Run processes every table of doc and assembles the dataset.
func (p *Pipeline) Run(ctx context.Context, doc *model.Document) (*model.Dataset, *Report, error) {
	if doc == nil {
		return nil, nil, ErrNilDocument
	}
	if p.targets == nil || p.targets.Len() == 0 {
		return nil, nil, targets.ErrEmptyTargets
	}

	idx := headings.New(doc, p.headingOpts...)
	p.logger.Debug("indexed headings", "count", idx.Len(), "tables", len(doc.Tables))

	results, err := p.processAll(ctx, doc.Tables, idx)
	if err != nil {
		return nil, nil, fmt.Errorf("processing tables: %w", err)
	}

	var records []model.Record
	for _, res := range results {
		if res.Err != nil {
			p.logger.Warn("skipping table",
				"table_index", res.TableIndex,
				"heading", res.Heading,
				"error", res.Err)
			continue
		}
		p.logger.Debug("processed table",
			"table_index", res.TableIndex,
			"heading", res.Heading,
			"column", res.Column,
			"records", len(res.Records))
		records = append(records, res.Records...)
	}

	for _, f := range doc.Failures {
		p.logger.Warn("table not parsed",
			"ordinal", f.Ordinal,
			"position", f.Position,
			"error", f.Err)
	}

	dataset := model.NewDataset(records)
	report := newReport(doc, results, dataset)

	p.logger.Info("run complete",
		"tables_discovered", report.TablesDiscovered,
		"tables_parsed", report.TablesParsed,
		"tables_with_records", report.TablesWithRecords,
		"records", dataset.Len())

	if dataset.Empty() {
		return dataset, report, ErrEmptyResult
	}
	return dataset, report, nil
}

// processAll runs ProcessTable over tables. Each result lands in its own
// slot, so order is kept regardless of concurrency.
func (p *Pipeline) processAll(ctx context.Context, tables []*model.Table, idx *headings.Index) ([]TableResult, error) {
	results := make([]TableResult, len(tables))
	prog := &progress{fn: p.progress, total: len(tables)}

	if p.concurrency <= 1 || len(tables) < 2 {
		for i, table := range tables {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = p.ProcessTable(table, idx)
			prog.tick()
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, table := range tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.ProcessTable(table, idx)
			prog.tick()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type progress struct {
	mu    sync.Mutex
	fn    func(done, total int)
	done  int
	total int
}

func (pr *progress) tick() {
	if pr.fn == nil {
		return
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.done++
	pr.fn(pr.done, pr.total)
}
