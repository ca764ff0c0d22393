package zone

import (
	"sort"

	"golang.org/x/net/html"

	"tinymahjong/internal/dom"
	"tinymahjong/internal/logging"
)

// Binding is what a Binder hands back for a bound zone.
type Binding interface {
	// Active reports whether a drag session is running on the zone.
	Active() bool
	// Unbind releases the zone's drag surface.
	Unbind()
}

// Binder attaches a drag controller to a zone.
type Binder interface {
	Bind(z Zone) Binding
}

type entry struct {
	node    *html.Node
	binding Binding
}

// Registry tracks which zones of a document are bound.
type Registry struct {
	binder Binder
	bound  map[string]entry
}

// NewRegistry creates a registry that binds zones through b.
func NewRegistry(b Binder) *Registry {
	return &Registry{binder: b, bound: make(map[string]entry)}
}

// Sync re-scans doc. Zones carrying the uninitialized marker are bound and
// the marker is cleared; zones already bound to the same node are left
// alone; zones that vanished are unbound once their session settles. It
// returns the ids bound by this call.
func (r *Registry) Sync(doc *dom.Document) []string {
	var fresh []string
	present := make(map[string]struct{})

	for _, z := range Scan(doc) {
		present[z.ID] = struct{}{}
		e, ok := r.bound[z.ID]
		switch {
		case ok && e.node == z.Node:
			// Already bound; a re-render may have put the marker back.
			dom.RemoveClass(z.Node, UninitializedClass)
			continue
		case !z.Uninitialized:
			continue
		case ok && e.binding.Active():
			logging.Debugf("zone %s replaced mid-drag, deferring bind", z.ID)
			continue
		case ok:
			e.binding.Unbind()
		}

		r.bound[z.ID] = entry{node: z.Node, binding: r.binder.Bind(z)}
		dom.RemoveClass(z.Node, UninitializedClass)
		fresh = append(fresh, z.ID)
		logging.Debugf("zone %s bound", z.ID)
	}

	for id, e := range r.bound {
		if _, ok := present[id]; ok || e.binding.Active() {
			continue
		}
		e.binding.Unbind()
		delete(r.bound, id)
		logging.Debugf("zone %s unbound", id)
	}
	return fresh
}

// Bound reports whether id currently has a controller.
func (r *Registry) Bound(id string) bool {
	_, ok := r.bound[id]
	return ok
}

// IDs returns the bound zone ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.bound))
	for id := range r.bound {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
