package pipeline

import (
	"log/slog"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/filter"
	"github.com/tsawler/wikimelt/headings"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClassifier sets the identifier column heuristic's constants.
func WithClassifier(cfg classify.Config) Option {
	return func(p *Pipeline) {
		p.classifier = classify.New(cfg)
	}
}

// WithFilterOptions configures metadata markers, sentinels and identifier
// spelling.
func WithFilterOptions(opts ...filter.Option) Option {
	return func(p *Pipeline) {
		p.filterOpts = append(p.filterOpts, opts...)
	}
}

// WithHeadingLevels restricts which heading levels provide context.
func WithHeadingLevels(levels ...int) Option {
	return func(p *Pipeline) {
		p.headingOpts = []headings.Option{headings.WithLevels(levels...)}
	}
}

// WithConcurrency sets how many tables are processed at once. Values below
// 1 mean 1. Output order does not depend on it.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// WithLogger sets the logger for per-table diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers fn to be called after each table with the number
// of tables done and the total. Calls are serialized.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}
