package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// Extract fetches url with f and returns its main content as Markdown.
func Extract(ctx context.Context, f Fetcher, url string, opts Options) (string, error) {
	body, err := f.Raw(ctx, url)
	if err != nil {
		return "", err
	}
	if opts.Domain == "" {
		opts.Domain = url
	}
	return FromHTML(bytes.NewReader(body), opts)
}

// FromHTML returns the main content of the HTML read from r as Markdown.
// Tables are kept as Markdown tables.
func FromHTML(r io.Reader, opts Options) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	checker := newExclusionChecker(opts.Exclusion, doc)
	checker.prune(doc)

	root := doc
	if opts.Exclusion != ExclusionNone {
		root = mainContent(doc)
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("rendering content: %w", err)
		}
	}

	conv := newConverter()
	var convOpts []converter.ConvertOptionFunc
	if opts.Domain != "" {
		convOpts = append(convOpts, converter.WithDomain(opts.Domain))
	}

	markdown, err := conv.ConvertString(buf.String(), convOpts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", ErrNoContent
	}
	return markdown, nil
}

// mainContent picks the element holding the article: the MediaWiki content
// container, then <main>, then <article>, then <body>.
func mainContent(doc *html.Node) *html.Node {
	if n := findByID(doc, "mw-content-text"); n != nil {
		return n
	}
	for _, tag := range []string{"main", "article", "body"} {
		if n := findElement(doc, tag); n != nil {
			return n
		}
	}
	return doc
}

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}
