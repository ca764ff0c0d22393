package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// ID returns the id attribute of n.
func ID(n *html.Node) string {
	id, _ := Attr(n, "id")
	return id
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass adds c to n's class list if missing.
func AddClass(n *html.Node, c string) {
	if HasClass(n, c) {
		return
	}
	SetAttr(n, "class", strings.Join(append(Classes(n), c), " "))
}

// RemoveClass drops c from n's class list.
func RemoveClass(n *html.Node, c string) {
	if !HasClass(n, c) {
		return
	}
	var kept []string
	for _, have := range Classes(n) {
		if have != c {
			kept = append(kept, have)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Items returns the tile elements directly inside zone, in order.
func Items(zone *html.Node) []*html.Node {
	if zone == nil {
		return nil
	}
	var items []*html.Node
	for c := zone.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && HasClass(c, ItemClass) {
			items = append(items, c)
		}
	}
	return items
}

// ItemIDs returns the ids of the zone's tiles. The result is never nil.
func ItemIDs(zone *html.Node) []string {
	items := Items(zone)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, ID(it))
	}
	return ids
}

// IndexOf returns the position of item among the zone's tiles, or -1.
func IndexOf(zone, item *html.Node) int {
	for i, it := range Items(zone) {
		if it == item {
			return i
		}
	}
	return -1
}

// Move places item in zone so that it ends up at tile position index.
// An index past the end appends after the last tile.
func Move(item, zone *html.Node, index int) {
	Detach(item)
	items := Items(zone)
	if index < 0 {
		index = 0
	}
	if index < len(items) {
		zone.InsertBefore(item, items[index])
		return
	}
	if len(items) > 0 {
		zone.InsertBefore(item, items[len(items)-1].NextSibling)
		return
	}
	zone.AppendChild(item)
}

// Clone deep-copies n. The copy is detached.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// Detach removes n from its parent.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
