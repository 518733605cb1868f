// Package content extracts the main readable content of a web page as
// Markdown, leaving out navigation, page chrome and MediaWiki boilerplate.
package content

import (
	"context"
	"errors"
)

// ErrNoContent is returned when nothing readable is left after exclusion.
var ErrNoContent = errors.New("no readable content")

// ExclusionMode controls how navigation, headers, and footers are filtered.
type ExclusionMode int

const (
	// ExclusionNone includes all content without filtering.
	ExclusionNone ExclusionMode = iota

	// ExclusionExplicit skips only explicit semantic HTML5 elements:
	// <nav>, <aside>, top-level <header>/<footer>, and elements with
	// ARIA roles navigation, banner, contentinfo or complementary.
	ExclusionExplicit

	// ExclusionStandard (default) adds class/id pattern matching
	// ("nav", "menu", "footer", "sidebar", ...) and the MediaWiki
	// boilerplate classes (edit links, navboxes, category links).
	ExclusionStandard

	// ExclusionAggressive adds link-density heuristics to standard detection.
	// Blocks where most of the text sits inside links are dropped.
	ExclusionAggressive
)

// String returns the mode name.
func (m ExclusionMode) String() string {
	switch m {
	case ExclusionNone:
		return "none"
	case ExclusionExplicit:
		return "explicit"
	case ExclusionStandard:
		return "standard"
	case ExclusionAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// ParseExclusionMode maps a mode name to its ExclusionMode. Unknown names
// return ExclusionStandard and false.
func ParseExclusionMode(s string) (ExclusionMode, bool) {
	switch s {
	case "none":
		return ExclusionNone, true
	case "explicit":
		return ExclusionExplicit, true
	case "standard", "":
		return ExclusionStandard, true
	case "aggressive":
		return ExclusionAggressive, true
	}
	return ExclusionStandard, false
}

// Options configures extraction.
type Options struct {
	Exclusion ExclusionMode

	// Domain, when set, turns relative links into absolute ones.
	Domain string
}

// DefaultOptions returns standard exclusion without link rewriting.
func DefaultOptions() Options {
	return Options{Exclusion: ExclusionStandard}
}

// Fetcher retrieves the raw bytes behind a URL. *fetch.Client satisfies it.
type Fetcher interface {
	Raw(ctx context.Context, url string) ([]byte, error)
}
