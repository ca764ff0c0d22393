// Package dom holds the zone document the drag layer reads and mutates.
// It is a thin layer over golang.org/x/net/html nodes; the server owns the
// markup and replaces it through Patch.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ZoneClass marks an element as a drop zone.
	ZoneClass = "dropzone"
	// ItemClass marks a tile element inside a zone.
	ItemClass = "tile"
)

// Document is a parsed zone document.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && ID(n) == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Zones returns every drop zone element in document order.
func (d *Document) Zones() []*html.Node {
	var zones []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && HasClass(n, ZoneClass) {
			zones = append(zones, n)
		}
		return true
	})
	return zones
}

// Contains reports whether n is still attached to the document.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// Patch applies a server re-render. Zones in markup that already exist are
// morphed in place so node identity survives; new zones are appended to the
// body; zones absent from markup are detached.
func (d *Document) Patch(markup string) error {
	body := d.body()
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return fmt.Errorf("parse patch: %w", err)
	}

	holder := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		holder.AppendChild(n)
	}
	incoming := (&Document{root: holder}).Zones()

	seen := make(map[string]struct{}, len(incoming))
	for _, z := range incoming {
		id := ID(z)
		if id == "" {
			continue
		}
		seen[id] = struct{}{}
		if cur := d.ByID(id); cur != nil && HasClass(cur, ZoneClass) {
			morph(cur, z)
			continue
		}
		Detach(z)
		body.AppendChild(z)
	}
	for _, z := range d.Zones() {
		if _, ok := seen[ID(z)]; !ok {
			Detach(z)
		}
	}
	return nil
}

func (d *Document) body() *html.Node {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return d.root
	}
	return body
}

// morph copies attributes and children of src onto dst.
func morph(dst, src *html.Node) {
	dst.Attr = append([]html.Attribute(nil), src.Attr...)
	for c := dst.FirstChild; c != nil; {
		next := c.NextSibling
		dst.RemoveChild(c)
		c = next
	}
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
