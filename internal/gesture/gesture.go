// Package gesture is a headless pointer-drag provider modelled on sortable
// lists: zones register hooks, a drag is begun on an item, hovered over
// targets, and released. The engine mutates the document optimistically and
// reports the drop to every zone that observes it.
package gesture

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"tinymahjong/internal/dom"
)

var (
	// ErrUnknownItem is returned when the item is not in a registered zone.
	ErrUnknownItem = errors.New("gesture: item not in a registered zone")
	// ErrRejected is returned when the source zone refuses the drag.
	ErrRejected = errors.New("gesture: drag rejected")
)

// SortEvent describes a drag at any point of its life.
type SortEvent struct {
	Seq      uint64
	ItemID   string
	Item     *html.Node
	From     string
	To       string
	FromNode *html.Node
	ToNode   *html.Node
	OldIndex int
	NewIndex int
	Cloned   bool
}

// Hooks are the per-zone predicates and callbacks.
type Hooks interface {
	// CanStart reports whether item may be picked up from this zone.
	CanStart(item *html.Node) bool
	// CanPull reports whether this zone lets a tile go to zone to.
	CanPull(to string) bool
	// CanPut reports whether this zone takes a tile from zone from.
	CanPut(from string) bool
	// Sortable reports whether tiles may be reordered inside this zone.
	Sortable() bool
	// Clones reports whether tiles leave a copy behind when pulled.
	Clones() bool

	Start(SortEvent)
	Release(SortEvent)
	Sort(SortEvent)
	End(SortEvent)
}

// Engine owns the registrations for one document.
type Engine struct {
	doc   *dom.Document
	zones map[string]Hooks
	seq   uint64
}

// New creates an engine over doc.
func New(doc *dom.Document) *Engine {
	return &Engine{doc: doc, zones: make(map[string]Hooks)}
}

// Register attaches hooks to a zone id, replacing any earlier hooks.
func (e *Engine) Register(zoneID string, h Hooks) {
	e.zones[zoneID] = h
}

// Unregister removes h from zoneID if it is still the registered hooks.
func (e *Engine) Unregister(zoneID string, h Hooks) {
	if cur, ok := e.zones[zoneID]; ok && cur == h {
		delete(e.zones, zoneID)
	}
}

// Registered reports whether zoneID has hooks.
func (e *Engine) Registered(zoneID string) bool {
	_, ok := e.zones[zoneID]
	return ok
}

// Begin picks up the item with the given id.
func (e *Engine) Begin(itemID string) (*Drag, error) {
	item := e.doc.ByID(itemID)
	if item == nil || item.Parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	from := item.Parent
	fromID := dom.ID(from)
	h, ok := e.zones[fromID]
	if !ok || !dom.HasClass(from, dom.ZoneClass) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if !h.CanStart(item) {
		return nil, fmt.Errorf("%w: %s from %s", ErrRejected, itemID, fromID)
	}

	e.seq++
	d := &Drag{
		e:        e,
		seq:      e.seq,
		item:     item,
		from:     fromID,
		fromNode: from,
		hooks:    h,
		oldIndex: dom.IndexOf(from, item),
	}
	d.target, d.index, d.ok = fromID, d.oldIndex, true
	h.Start(d.event())
	return d, nil
}

// Drag is one gesture in flight.
type Drag struct {
	e        *Engine
	seq      uint64
	item     *html.Node
	from     string
	fromNode *html.Node
	hooks    Hooks
	oldIndex int

	target string
	index  int
	ok     bool
	done   bool
}

// Hover moves the pointer over zone at tile position index and reports
// whether a drop there would be accepted. The predicates are evaluated on
// every call.
func (d *Drag) Hover(zoneID string, index int) bool {
	d.target, d.index = zoneID, index
	d.ok = d.accepts(zoneID, index)
	return d.ok
}

func (d *Drag) accepts(zoneID string, index int) bool {
	if zoneID == d.from {
		return index == d.oldIndex || d.hooks.Sortable()
	}
	to, ok := d.e.zones[zoneID]
	if !ok {
		return false
	}
	return d.hooks.CanPull(zoneID) && to.CanPut(d.from)
}

// Release drops the item over the last hovered target. It returns the
// sort event and true when the document changed.
func (d *Drag) Release() (SortEvent, bool) {
	if d.done {
		return SortEvent{}, false
	}
	d.done = true

	evt := d.event()
	if !d.e.doc.Contains(d.item) || !d.e.doc.Contains(d.fromNode) {
		// the zone was re-rendered under us
		d.hooks.End(evt)
		return SortEvent{}, false
	}
	d.hooks.Release(evt)

	if !d.ok {
		d.hooks.End(evt)
		return SortEvent{}, false
	}

	if d.target == d.from {
		if d.index == d.oldIndex || !d.hooks.Sortable() {
			d.hooks.End(evt)
			return SortEvent{}, false
		}
		dom.Move(d.item, d.fromNode, d.index)
		evt.NewIndex = dom.IndexOf(d.fromNode, d.item)
		d.hooks.Sort(evt)
		d.hooks.End(evt)
		return evt, true
	}

	toNode := d.e.doc.ByID(d.target)
	to, registered := d.e.zones[d.target]
	if toNode == nil || !registered {
		d.hooks.End(evt)
		return SortEvent{}, false
	}

	moved := d.item
	if d.hooks.Clones() {
		moved = dom.Clone(d.item)
		evt.Cloned = true
	}
	dom.Move(moved, toNode, d.index)
	evt.Item = moved
	evt.ToNode = toNode
	evt.NewIndex = dom.IndexOf(toNode, moved)

	to.Sort(evt)
	d.hooks.Sort(evt)
	d.hooks.End(evt)
	return evt, true
}

// Cancel abandons the drag without dropping.
func (d *Drag) Cancel() {
	if d.done {
		return
	}
	d.done = true
	d.hooks.End(d.event())
}

func (d *Drag) event() SortEvent {
	return SortEvent{
		Seq:      d.seq,
		ItemID:   dom.ID(d.item),
		Item:     d.item,
		From:     d.from,
		To:       d.target,
		FromNode: d.fromNode,
		ToNode:   d.e.doc.ByID(d.target),
		OldIndex: d.oldIndex,
		NewIndex: d.index,
	}
}
