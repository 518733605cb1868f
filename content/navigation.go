package content

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// excludedPattern matches class/id values that indicate navigation or page chrome.
var excludedPattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// mediaWikiClasses are MediaWiki classes that never carry article content.
var mediaWikiClasses = map[string]bool{
	"mw-editsection":     true,
	"mw-jump-link":       true,
	"navbox":             true,
	"catlinks":           true,
	"printfooter":        true,
	"noprint":            true,
	"reflist":            true,
	"mw-references-wrap": true,
}

// exclusionChecker holds state for determining which elements to exclude.
type exclusionChecker struct {
	mode             ExclusionMode
	bodyNode         *html.Node
	topLevelWrapper  *html.Node // Single wrapper div/main if present
	linkDensityCache map[*html.Node]float64
}

func newExclusionChecker(mode ExclusionMode, doc *html.Node) *exclusionChecker {
	checker := &exclusionChecker{
		mode:             mode,
		linkDensityCache: make(map[*html.Node]float64),
	}

	checker.bodyNode = findElement(doc, "body")
	if checker.bodyNode == nil {
		checker.bodyNode = doc
	}
	checker.topLevelWrapper = detectTopLevelWrapper(checker.bodyNode)

	return checker
}

// detectTopLevelWrapper finds a single structural wrapper element if one exists.
// This handles the common pattern of <body><div id="wrapper">...</div></body>
func detectTopLevelWrapper(body *html.Node) *html.Node {
	var structuralChildren []*html.Node

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "main":
				structuralChildren = append(structuralChildren, c)
			case "script", "style", "noscript", "template":
			default:
				return nil
			}
		}
	}

	if len(structuralChildren) == 1 {
		return structuralChildren[0]
	}
	return nil
}

// shouldExclude determines if a node should be excluded based on the exclusion mode.
func (ec *exclusionChecker) shouldExclude(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	switch n.Data {
	case "script", "style", "noscript", "template":
		return true
	}

	if ec.mode == ExclusionNone {
		return false
	}

	if ec.shouldExcludeExplicit(n) {
		return true
	}

	if ec.mode >= ExclusionStandard && ec.shouldExcludeByPattern(n) {
		return true
	}

	if ec.mode >= ExclusionAggressive && ec.shouldExcludeByLinkDensity(n) {
		return true
	}

	return false
}

// shouldExcludeExplicit checks for explicit semantic HTML5 elements and ARIA roles.
func (ec *exclusionChecker) shouldExcludeExplicit(n *html.Node) bool {
	switch n.Data {
	case "nav", "aside":
		return true
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return ec.isTopLevel(n)
	}

	// <header> and <footer> only count as chrome at the top level
	switch n.Data {
	case "header", "footer":
		return ec.isTopLevel(n)
	}

	return false
}

// isTopLevel returns true if the node is a direct child of body or a single top-level wrapper.
func (ec *exclusionChecker) isTopLevel(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	if parent == ec.bodyNode {
		return true
	}
	return ec.topLevelWrapper != nil && parent == ec.topLevelWrapper
}

// shouldExcludeByPattern checks class and id attributes.
func (ec *exclusionChecker) shouldExcludeByPattern(n *html.Node) bool {
	class := getAttr(n, "class")
	id := getAttr(n, "id")

	for _, c := range strings.Fields(class) {
		if mediaWikiClasses[c] {
			return true
		}
	}

	if class != "" && excludedPattern.MatchString(class) {
		return true
	}
	if id != "" && excludedPattern.MatchString(id) {
		return true
	}

	return false
}

// shouldExcludeByLinkDensity checks if an element has an unusually high link-to-text ratio.
func (ec *exclusionChecker) shouldExcludeByLinkDensity(n *html.Node) bool {
	switch n.Data {
	case "div", "section", "ul", "ol":
	default:
		return false
	}

	// More than 60% link text across at least 4 links
	density := ec.calculateLinkDensity(n)
	return density > 0.6 && countLinks(n) >= 4
}

// calculateLinkDensity returns the ratio of link text to total text (0.0 to 1.0).
func (ec *exclusionChecker) calculateLinkDensity(n *html.Node) float64 {
	if cached, ok := ec.linkDensityCache[n]; ok {
		return cached
	}

	totalLen := textLength(n)
	if totalLen == 0 {
		ec.linkDensityCache[n] = 0
		return 0
	}

	density := float64(linkTextLength(n)) / float64(totalLen)
	ec.linkDensityCache[n] = density
	return density
}

// textLength returns the total length of text content in a node.
func textLength(n *html.Node) int {
	if n.Type == html.TextNode {
		return len(strings.TrimSpace(n.Data))
	}

	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLength(c)
	}
	return total
}

// linkTextLength returns the length of text content within <a> tags.
func linkTextLength(n *html.Node) int {
	if n.Type == html.ElementNode && n.Data == "a" {
		return textLength(n)
	}

	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += linkTextLength(c)
	}
	return total
}

// countLinks returns the number of <a> elements within a node.
func countLinks(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == "a" {
		count = 1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countLinks(c)
	}
	return count
}

// prune removes every excluded element below root. Exclusion is decided on
// the untouched tree first, so link densities and top-level checks see the
// original structure.
func (ec *exclusionChecker) prune(root *html.Node) {
	var doomed []*html.Node

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if ec.shouldExclude(c) {
				doomed = append(doomed, c)
				continue
			}
			visit(c)
		}
	}
	visit(root)

	for _, n := range doomed {
		n.Parent.RemoveChild(n)
	}
}

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

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && getAttr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findByID(c, id); result != nil {
			return result
		}
	}
	return nil
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
