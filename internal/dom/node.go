package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is one element (or the document root) of a parsed page.
type Node interface {
	// FindAll returns every descendant matching selector, in document order.
	FindAll(selector string) []Node

	// Find returns the first descendant matching selector.
	Find(selector string) (Node, bool)

	// Closest returns the nearest ancestor (or the node itself) matching selector.
	Closest(selector string) (Node, bool)

	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// AttrOr returns the named attribute or def when it is absent.
	AttrOr(name, def string) string

	// HasClass reports whether the class attribute contains class.
	HasClass(class string) bool

	// Is reports whether the node matches selector.
	Is(selector string) bool

	// Tag returns the lower-case element name, or "" for the document root.
	Tag() string

	// Text returns the visible text: every text fragment trimmed, empty
	// fragments dropped, the rest joined with single spaces.
	Text() string

	// RawText returns the concatenated text content without trimming.
	RawText() string
}

// Parse parses markup into a document root node.
func Parse(markup string) (Node, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &node{sel: goquery.NewDocumentFromNode(root).Selection}, nil
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(markup string) Node {
	n, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return n
}

// FromSelection wraps a goquery selection. Only the first element of the
// selection is used.
func FromSelection(sel *goquery.Selection) Node {
	return &node{sel: sel.First()}
}

type node struct {
	sel *goquery.Selection
}

func (n *node) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	out := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &node{sel: s})
	})
	return out
}

func (n *node) Find(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &node{sel: found}, true
}

func (n *node) Closest(selector string) (Node, bool) {
	found := n.sel.Closest(selector)
	if found.Length() == 0 {
		return nil, false
	}
	return &node{sel: found}, true
}

func (n *node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *node) AttrOr(name, def string) string {
	return n.sel.AttrOr(name, def)
}

func (n *node) HasClass(class string) bool {
	return n.sel.HasClass(class)
}

func (n *node) Is(selector string) bool {
	return n.sel.Is(selector)
}

func (n *node) Tag() string {
	if len(n.sel.Nodes) == 0 {
		return ""
	}
	h := n.sel.Nodes[0]
	if h.Type != html.ElementNode {
		return ""
	}
	return h.Data
}

func (n *node) Text() string {
	if len(n.sel.Nodes) == 0 {
		return ""
	}
	var parts []string
	collectText(n.sel.Nodes[0], &parts)
	return strings.Join(parts, " ")
}

func (n *node) RawText() string {
	return n.sel.Text()
}

// collectText walks h in document order appending trimmed text fragments.
// Script and style contents are not visible text.
func collectText(h *html.Node, parts *[]string) {
	if h.Type == html.TextNode {
		if t := strings.TrimSpace(h.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if h.Type == html.ElementNode && (h.Data == "script" || h.Data == "style") {
		return
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
