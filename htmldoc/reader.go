package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/textnorm"
)

// Open parses the HTML file at filename.
func Open(filename string, opts ...Option) (*model.Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Parse(f, opts...)
}

// ParseString parses HTML held in a string.
func ParseString(s string, opts ...Option) (*model.Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseBytes parses HTML held in a byte slice.
func ParseBytes(b []byte, opts ...Option) (*model.Document, error) {
	return Parse(bytes.NewReader(b), opts...)
}

// Parse parses HTML from r and returns the document's headings and its
// recognized tables. A failure to build the tree is returned as a
// *DocumentParseError; a table that cannot be parsed is recorded in
// Document.Failures and skipped.
func Parse(r io.Reader, opts ...Option) (*model.Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, &DocumentParseError{Err: err}
	}

	w := &walker{
		opts: o,
		doc:  model.NewDocument(),
	}
	if title := findElement(root, "title"); title != nil {
		w.doc.Title = textnorm.Clean(getTextContent(title))
	}
	w.walk(root)

	return w.doc, nil
}

// walker visits the tree once in document order. Every element node gets
// the next position, so positions of headings and tables are comparable.
type walker struct {
	opts     Options
	doc      *model.Document
	position int
}

func (w *walker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		pos := w.position
		w.position++

		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			w.doc.Headings = append(w.doc.Headings, model.Heading{
				Level:    int(n.Data[1] - '0'),
				Text:     textnorm.Clean(getTextContent(n)),
				Position: pos,
			})

		case "table":
			if hasClass(n, w.opts.TableClass) {
				w.addTable(n, pos)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) addTable(n *html.Node, pos int) {
	ordinal := w.doc.Discovered
	w.doc.Discovered++

	table, err := parseTable(n)
	if err != nil {
		w.doc.Failures = append(w.doc.Failures, model.TableFailure{
			Ordinal:  ordinal,
			Position: pos,
			Err:      &TableParseError{Ordinal: ordinal, Err: err},
		})
		return
	}

	table.Position = pos
	table.Class = getAttr(n, "class")
	w.doc.AddTable(table)
}

// hasClass reports whether n's class list contains class. An empty class
// matches every element.
func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return true
	}
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// shouldSkipElement returns true if the element never contributes text.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
		return true
	}
	return false
}

// isHidden reports whether n is hidden with an inline display:none, which
// MediaWiki uses for sort keys inside table cells.
func isHidden(n *html.Node) bool {
	style := strings.ReplaceAll(strings.ToLower(getAttr(n, "style")), " ", "")
	return strings.Contains(style, "display:none")
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts all visible text from a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) || isHidden(n) {
			return
		}
		if n.Data == "br" {
			result.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	// Block elements end a word
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "td", "th":
			result.WriteString(" ")
		}
	}
}

// getAttr returns the value of an attribute on a node, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
