// Package filter turns melted tuples into records: it drops metadata rows,
// missing values and non-target identifiers, and removes duplicates.
package filter

import (
	"strings"

	"github.com/tsawler/wikimelt/melt"
	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/textnorm"
)

// DefaultMetadataMarkers are identifier cells of rows the page rendering
// adds, not data.
var DefaultMetadataMarkers = []string{"Artículo de Wikipedia"}

// DefaultSentinels are cleaned values that stand for a missing value.
var DefaultSentinels = []string{"", "-", "—", "–", "nan"}

// Targets is the membership test the filter needs.
type Targets interface {
	Contains(v string) bool
	Canonical(v string) (string, bool)
}

// Option configures a Filter.
type Option func(*Filter)

// WithMetadataMarkers replaces the metadata row markers.
func WithMetadataMarkers(markers ...string) Option {
	return func(f *Filter) {
		f.markers = foldAll(markers)
	}
}

// WithSentinels replaces the missing-value sentinels. Sentinels compare
// case-insensitively against cleaned values; the empty string is always one.
func WithSentinels(sentinels ...string) Option {
	return func(f *Filter) {
		f.sentinels = lowerAll(sentinels)
	}
}

// WithCanonicalIdentifiers makes records carry the target set's spelling of
// the identifier instead of the cleaned cell text.
func WithCanonicalIdentifiers(on bool) Option {
	return func(f *Filter) {
		f.canonical = on
	}
}

// Filter applies the row and tuple rules. It is immutable after New and safe
// for concurrent use.
type Filter struct {
	targets   Targets
	markers   map[string]struct{}
	sentinels map[string]struct{}
	canonical bool
}

// New returns a filter keeping identifiers in targets.
func New(targets Targets, opts ...Option) *Filter {
	f := &Filter{
		targets:   targets,
		markers:   foldAll(DefaultMetadataMarkers),
		sentinels: lowerAll(DefaultSentinels),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsMetadataRow reports whether identifierCell marks a metadata row.
func (f *Filter) IsMetadataRow(identifierCell string) bool {
	_, ok := f.markers[textnorm.Fold(identifierCell)]
	return ok
}

// IsMissing reports whether a cleaned value is a missing-value sentinel.
func (f *Filter) IsMissing(cleaned string) bool {
	if cleaned == "" {
		return true
	}
	_, ok := f.sentinels[strings.ToLower(cleaned)]
	return ok
}

// Records cleans tuples and keeps those with all fields present and a target
// identifier, stamping each with tableIndex and heading. The first of several
// records with the same (Identifier, Attribute, Value, TableIndex) is kept.
func (f *Filter) Records(tuples []melt.Tuple, tableIndex int, heading string) []model.Record {
	records := make([]model.Record, 0, len(tuples))
	seen := make(map[model.Key]struct{}, len(tuples))

	for _, t := range tuples {
		rec := model.Record{
			Identifier:     textnorm.Clean(t.Identifier),
			Attribute:      textnorm.Clean(t.Attribute),
			Value:          textnorm.Clean(t.Value),
			TableIndex:     tableIndex,
			HeadingContext: heading,
		}

		if f.IsMissing(rec.Identifier) || f.IsMissing(rec.Attribute) || f.IsMissing(rec.Value) {
			continue
		}
		if !f.targets.Contains(rec.Identifier) {
			continue
		}
		if f.canonical {
			if name, ok := f.targets.Canonical(rec.Identifier); ok {
				rec.Identifier = name
			}
		}

		k := rec.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		records = append(records, rec)
	}

	return records
}

func foldAll(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		if folded := textnorm.Fold(v); folded != "" {
			m[folded] = struct{}{}
		}
	}
	return m
}

func lowerAll(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[strings.ToLower(textnorm.Clean(v))] = struct{}{}
	}
	return m
}
