// Package drag binds one controller to every zone. A controller answers the
// gesture engine's questions from the rule table, cues highlight zones while
// a drag runs, and hands completed drops to the normalizer.
package drag

import (
	"golang.org/x/net/html"

	"tinymahjong/internal/dom"
	"tinymahjong/internal/gesture"
	"tinymahjong/internal/logging"
	"tinymahjong/internal/move"
	"tinymahjong/internal/rules"
	"tinymahjong/internal/zone"
)

// HighlightClass cues a zone as a useful drop target.
const HighlightClass = "with-description"

// State is the controller's drag session state.
type State int

const (
	Idle State = iota
	Dragging
	Settling
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Emitter receives the event a controller is responsible for.
type Emitter interface {
	Emit(z zone.Zone, ev move.Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(zone.Zone, move.Event)

// Emit calls f.
func (f EmitterFunc) Emit(z zone.Zone, ev move.Event) { f(z, ev) }

// Controller is the drag surface of one zone.
type Controller struct {
	z      zone.Zone
	doc    *dom.Document
	engine *gesture.Engine
	norm   *move.Normalizer
	emit   Emitter
	seat   string

	state State
	lit   []*html.Node
}

var (
	_ gesture.Hooks = (*Controller)(nil)
	_ zone.Binding  = (*Controller)(nil)
)

// Zone returns the zone the controller was bound to.
func (c *Controller) Zone() zone.Zone { return c.z }

// State returns the session state.
func (c *Controller) State() State { return c.state }

// Active reports whether a drag session is running.
func (c *Controller) Active() bool { return c.state != Idle }

// Unbind removes the controller from the engine.
func (c *Controller) Unbind() {
	c.engine.Unregister(c.z.ID, c)
	c.unhighlight()
	c.state = Idle
}

// flags are read from the element on every call so flag classes changed
// by a re-render apply to the next hover.
func (c *Controller) flags() rules.Flags {
	return zone.FlagsOf(c.z.Node, c.z.Rule)
}

func (c *Controller) CanStart(item *html.Node) bool {
	if !c.z.Ordered() && rules.Offers(c.z.Ref.Kind, c.flags()).Mode == rules.Frozen {
		return false
	}
	return zone.Draggable(c.z.Node, c.z.Rule, item)
}

func (c *Controller) CanPull(to string) bool {
	ref, ok := rules.ParseID(to)
	return ok && rules.CanPull(c.z.Ref, c.flags(), ref)
}

func (c *Controller) CanPut(from string) bool {
	ref, ok := rules.ParseID(from)
	return ok && rules.CanPut(c.z.Ref, c.flags(), ref)
}

func (c *Controller) Sortable() bool { return c.z.Ordered() }

func (c *Controller) Clones() bool {
	return rules.Offers(c.z.Ref.Kind, c.flags()).Mode == rules.Clone
}

func (c *Controller) Start(gesture.SortEvent) {
	c.state = Dragging
	c.highlight()
}

func (c *Controller) Release(gesture.SortEvent) {
	c.state = Settling
}

func (c *Controller) Sort(evt gesture.SortEvent) {
	res, ok := c.norm.Normalize(c.z.ID, evt)
	if !ok {
		return
	}
	c.emit.Emit(c.z, res.Event)
	for _, pc := range res.Cleanup {
		if pc.Apply() {
			logging.Debugf("removed placeholder %s from %s", pc.ItemID, pc.ZoneID)
		}
	}
}

func (c *Controller) End(gesture.SortEvent) {
	c.unhighlight()
	c.state = Idle
}

// highlight cues the rule's highlight zones of the same seat, recording
// only the nodes it changed.
func (c *Controller) highlight() {
	for _, k := range c.z.Rule.Highlights {
		ref := rules.Ref{Kind: k}
		if r, ok := rules.Lookup(k); ok && r.Seated {
			ref.Seat = c.z.Ref.Seat
			if ref.Seat == "" {
				ref.Seat = c.seat
			}
		}
		n := c.doc.ByID(ref.ID())
		if n == nil || !dom.HasClass(n, dom.ZoneClass) || dom.HasClass(n, HighlightClass) {
			continue
		}
		dom.AddClass(n, HighlightClass)
		c.lit = append(c.lit, n)
	}
}

func (c *Controller) unhighlight() {
	for _, n := range c.lit {
		dom.RemoveClass(n, HighlightClass)
	}
	c.lit = nil
}
