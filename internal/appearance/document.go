package appearance

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the page the engine styles.
type Document interface {
	// RemoveElement removes every element with the given id and reports whether any existed.
	RemoveElement(id string) bool
	// InjectStyle appends a style element with the given id to the document head.
	InjectStyle(id, css string) error
	// SetColorScheme toggles the dark class on the root element.
	SetColorScheme(dark bool)
}

const darkClass = "dark"

// HTMLDocument is a Document backed by a parsed HTML tree.
type HTMLDocument struct {
	root *html.Node
}

const blankDocument = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Mail</title></head><body></body></html>`

// NewHTMLDocument returns an empty page.
func NewHTMLDocument() *HTMLDocument {
	doc, err := ParseHTMLDocument(strings.NewReader(blankDocument))
	if err != nil {
		panic(fmt.Sprintf("parse blank document: %v", err))
	}
	return doc
}

// ParseHTMLDocument parses a page. Missing html, head and body elements are
// synthesized by the parser.
func ParseHTMLDocument(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &HTMLDocument{root: root}, nil
}

func (d *HTMLDocument) RemoveElement(id string) bool {
	matches := d.findAll(func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	for _, n := range matches {
		n.Parent.RemoveChild(n)
	}
	return len(matches) > 0
}

func (d *HTMLDocument) InjectStyle(id, css string) error {
	if strings.Contains(strings.ToLower(css), "</style") {
		return fmt.Errorf("style content must not close the style element")
	}
	head := d.element(atom.Head)
	if head == nil {
		return fmt.Errorf("document has no head element")
	}

	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.AppendChild(style)
	return nil
}

func (d *HTMLDocument) SetColorScheme(dark bool) {
	root := d.element(atom.Html)
	if root == nil {
		return
	}

	classes := strings.Fields(attr(root, "class"))
	kept := classes[:0]
	for _, class := range classes {
		if class != darkClass {
			kept = append(kept, class)
		}
	}
	if dark {
		kept = append(kept, darkClass)
	}
	setAttr(root, "class", strings.Join(kept, " "))
}

// IsDark reports whether the root element carries the dark class.
func (d *HTMLDocument) IsDark() bool {
	root := d.element(atom.Html)
	if root == nil {
		return false
	}
	for _, class := range strings.Fields(attr(root, "class")) {
		if class == darkClass {
			return true
		}
	}
	return false
}

// Styles returns the text of every element with the given id, in document order.
func (d *HTMLDocument) Styles(id string) []string {
	matches := d.findAll(func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	out := make([]string, 0, len(matches))
	for _, n := range matches {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		out = append(out, b.String())
	}
	return out
}

// Render writes the document as HTML.
func (d *HTMLDocument) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *HTMLDocument) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func (d *HTMLDocument) element(a atom.Atom) *html.Node {
	matches := d.findAll(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	})
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (d *HTMLDocument) findAll(match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Key == key {
			if value == "" {
				n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
				return
			}
			n.Attr[i].Val = value
			return
		}
	}
	if value != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
	}
}
