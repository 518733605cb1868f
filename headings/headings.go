// Package headings indexes the section headings of a document and answers
// which heading precedes a given document position.
package headings

import (
	"sort"

	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/textnorm"
)

// Index is an immutable, position-ordered list of non-empty headings. It is
// safe for concurrent use.
type Index struct {
	headings []model.Heading
}

// Option configures New.
type Option func(*options)

type options struct {
	levels map[int]bool
}

// WithLevels restricts the index to the given heading levels (1-6).
// Without it every level is indexed.
func WithLevels(levels ...int) Option {
	return func(o *options) {
		if len(levels) == 0 {
			o.levels = nil
			return
		}
		o.levels = make(map[int]bool, len(levels))
		for _, l := range levels {
			o.levels[l] = true
		}
	}
}

// New builds the index from doc's headings. Heading text is cleaned and
// headings left empty by cleaning are skipped.
func New(doc *model.Document, opts ...Option) *Index {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{}
	if doc == nil {
		return idx
	}

	for _, h := range doc.Headings {
		if o.levels != nil && !o.levels[h.Level] {
			continue
		}
		text := textnorm.Clean(h.Text)
		if text == "" {
			continue
		}
		h.Text = text
		idx.headings = append(idx.headings, h)
	}

	sort.SliceStable(idx.headings, func(i, j int) bool {
		return idx.headings[i].Position < idx.headings[j].Position
	})

	return idx
}

// NearestPreceding returns the text of the closest heading strictly before
// position, or "" if there is none.
func (idx *Index) NearestPreceding(position int) string {
	if idx == nil || len(idx.headings) == 0 {
		return ""
	}

	// i is the first heading at or after position
	i := sort.Search(len(idx.headings), func(i int) bool {
		return idx.headings[i].Position >= position
	})
	if i == 0 {
		return ""
	}
	return idx.headings[i-1].Text
}

// Len returns the number of indexed headings.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.headings)
}

// Headings returns a copy of the indexed headings in position order.
func (idx *Index) Headings() []model.Heading {
	if idx == nil {
		return nil
	}
	out := make([]model.Heading, len(idx.headings))
	copy(out, idx.headings)
	return out
}
