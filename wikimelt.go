// Package wikimelt provides a fluent API for extracting
// (identifier, attribute, value) records from the data tables of an HTML
// reference page.
//
// Basic usage:
//
//	ds, warnings, err := wikimelt.Open("vocabulario.html").
//	    Targets("México", "España", "Puerto Rico", "Guatemala").
//	    Dataset(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", wikimelt.FormatWarnings(warnings))
//	}
//
// Each record carries the table it came from and the nearest preceding
// section heading. For lower-level control, the htmldoc and pipeline
// packages are also available.
package wikimelt

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tsawler/wikimelt/fetch"
	"github.com/tsawler/wikimelt/format"
	"github.com/tsawler/wikimelt/model"
)

// Open returns an Extractor for a local file. Raw HTML and saved Parse API
// JSON are told apart by extension, then by content. The file is read when
// a terminal operation runs.
//
// Example:
//
//	ds, _, err := wikimelt.Open("page.json").Dataset(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromHTML returns an Extractor reading raw page HTML from r.
// The reader is drained immediately.
func FromHTML(r io.Reader) *Extractor {
	return fromReader(r, format.HTML)
}

// FromParseAPI returns an Extractor reading a MediaWiki Parse API response
// from r. The reader is drained immediately.
func FromParseAPI(r io.Reader) *Extractor {
	return fromReader(r, format.ParseAPI)
}

// FromBytes returns an Extractor for data whose format is detected from
// its content.
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:    data,
		format:  format.DetectContent(data),
		loaded:  true,
		options: defaultOptions(),
	}
}

// FromDocument returns an Extractor over an already parsed document.
// TableClass has no effect on it.
func FromDocument(doc *model.Document) *Extractor {
	e := &Extractor{
		doc:     doc,
		loaded:  true,
		options: defaultOptions(),
	}
	if doc == nil {
		e.err = ErrNoSource
	}
	return e
}

// FromPage fetches a page by title through the Parse API. A nil client
// yields ErrNoSource.
//
// Example:
//
//	c, _ := fetch.New(fetch.DefaultOptions())
//	defer c.Close()
//	ds, _, err := wikimelt.FromPage(ctx, c, "Anexo:Gentilicios").Dataset(ctx)
func FromPage(ctx context.Context, c *fetch.Client, title string) *Extractor {
	if c == nil {
		return &Extractor{err: ErrNoSource, options: defaultOptions()}
	}
	body, err := c.ParsedPage(ctx, title)
	if err != nil {
		return &Extractor{err: err, options: defaultOptions()}
	}
	return FromParseAPI(bytes.NewReader(body))
}

// FromURL fetches raw page HTML from url.
func FromURL(ctx context.Context, c *fetch.Client, url string) *Extractor {
	if c == nil {
		return &Extractor{err: ErrNoSource, options: defaultOptions()}
	}
	body, err := c.Raw(ctx, url)
	if err != nil {
		return &Extractor{err: err, options: defaultOptions()}
	}
	return FromHTML(bytes.NewReader(body))
}

func fromReader(r io.Reader, f format.Format) *Extractor {
	e := &Extractor{
		format:  f,
		loaded:  true,
		options: defaultOptions(),
	}
	if r == nil {
		e.err = ErrNoSource
		return e
	}
	data, err := io.ReadAll(r)
	if err != nil {
		e.err = &DocumentParseError{Err: fmt.Errorf("reading input: %w", err)}
		return e
	}
	e.data = data
	return e
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	doc := wikimelt.Must(wikimelt.Open("page.html").Document())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustDataset wraps a call to Dataset() or Report() and panics if the error
// is non-nil. Warnings are discarded.
//
// Example:
//
//	ds := wikimelt.MustDataset(wikimelt.Open("page.html").Dataset(ctx))
func MustDataset[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
