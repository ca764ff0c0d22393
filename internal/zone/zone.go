// Package zone enumerates the drop zones of a document and keeps each one
// bound to exactly one drag controller across server re-renders.
package zone

import (
	"golang.org/x/net/html"

	"tinymahjong/internal/dom"
	"tinymahjong/internal/rules"
)

const (
	// UninitializedClass is rendered by the server on zones that still need
	// a controller.
	UninitializedClass = "uninitialized"
	// TargetAttr names the logical endpoint a zone's events are scoped to.
	TargetAttr = "data-target"
)

// Zone is a snapshot of one zone element.
type Zone struct {
	ID            string
	Ref           rules.Ref
	Rule          rules.Rule
	Flags         rules.Flags
	Target        string
	Uninitialized bool
	Node          *html.Node
}

// Ordered reports whether the zone's tile order is meaningful.
func (z Zone) Ordered() bool {
	return z.Rule.Ordered
}

// Read describes n if it is a zone the rule table knows.
func Read(n *html.Node) (Zone, bool) {
	id := dom.ID(n)
	ref, ok := rules.ParseID(id)
	if !ok {
		return Zone{}, false
	}
	rule, ok := rules.Lookup(ref.Kind)
	if !ok {
		return Zone{}, false
	}
	target, _ := dom.Attr(n, TargetAttr)
	return Zone{
		ID:            id,
		Ref:           ref,
		Rule:          rule,
		Flags:         FlagsOf(n, rule),
		Target:        target,
		Uninitialized: dom.HasClass(n, UninitializedClass),
		Node:          n,
	}, true
}

// FlagsOf reads the session flags rule declares from the zone element.
func FlagsOf(n *html.Node, rule rules.Rule) rules.Flags {
	f := make(rules.Flags, len(rule.Reads))
	for _, name := range rule.Reads {
		if dom.HasClass(n, string(name)) {
			f[name] = true
		}
	}
	return f
}

// Scan returns every known zone in doc. Zones with ids the rule table
// does not recognise are skipped.
func Scan(doc *dom.Document) []Zone {
	var zones []Zone
	for _, n := range doc.Zones() {
		if z, ok := Read(n); ok {
			zones = append(zones, z)
		}
	}
	return zones
}

const (
	// DraggableClass marks a tile the player may pick up.
	DraggableClass = "draggable"
	glowPrefix     = "dglow-"
)

// Draggable reports whether item may be picked up from the zone element n.
// Glow-gated zones only release the tile whose id is named by a dglow-<id>
// class on the zone itself.
func Draggable(n *html.Node, rule rules.Rule, item *html.Node) bool {
	if rule.GlowGated {
		id := dom.ID(item)
		return id != "" && dom.HasClass(n, glowPrefix+id)
	}
	return dom.HasClass(item, DraggableClass)
}
