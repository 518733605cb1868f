package wikimelt

import (
	"log/slog"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/htmldoc"
	"github.com/tsawler/wikimelt/targets"
)

// extractOptions holds the Extractor configuration.
type extractOptions struct {
	targets    *targets.Set
	tableClass string

	// nil keeps the filter defaults
	markers   []string
	sentinels []string

	headingLevels []int
	classifier    classify.Config
	concurrency   int
	canonical     bool

	logger   *slog.Logger
	progress func(done, total int)
}

func defaultOptions() extractOptions {
	return extractOptions{
		targets:     targets.Default(),
		tableClass:  htmldoc.DefaultTableClass,
		classifier:  classify.DefaultConfig(),
		concurrency: 1,
	}
}

// clone creates a deep copy of extractOptions. The target set is immutable
// and shared.
func (o extractOptions) clone() extractOptions {
	n := o
	n.markers = cloneStrings(o.markers)
	n.sentinels = cloneStrings(o.sentinels)
	if o.headingLevels != nil {
		n.headingLevels = append([]int(nil), o.headingLevels...)
	}
	return n
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
