package move

import (
	"golang.org/x/net/html"

	"tinymahjong/internal/dom"
	"tinymahjong/internal/gesture"
	"tinymahjong/internal/rules"
)

// DeckTileID is the placeholder tile the deck offer hands out.
const DeckTileID = "decktile"

// precedence decides which observer of a drop emits. Lower wins; kinds
// missing from the table never emit.
var precedence = map[rules.Kind]int{
	rules.Concealed:   1,
	rules.Exposed:     2,
	rules.PeekTile:    3,
	rules.HiddenGongs: 4,
	rules.WinTile:     5,
}

// Owner returns the zone that emits the event for a drop from one zone to
// another, and false when neither end may emit.
func Owner(from, to rules.Ref) (rules.Ref, bool) {
	pf, okf := precedence[from.Kind]
	pt, okt := precedence[to.Kind]
	switch {
	case okf && (!okt || pf <= pt):
		return from, true
	case okt:
		return to, true
	default:
		return rules.Ref{}, false
	}
}

// PostCondition states that an item must not remain in a zone once the
// event has been sent.
type PostCondition struct {
	ItemID string
	ZoneID string
	node   *html.Node
}

// Apply detaches the item if it still sits in the zone.
func (p PostCondition) Apply() bool {
	if p.node == nil || p.node.Parent == nil || dom.ID(p.node.Parent) != p.ZoneID {
		return false
	}
	dom.Detach(p.node)
	return true
}

// Result is what the owning observer acts on.
type Result struct {
	Event   Event
	Cleanup []PostCondition
}

// Normalizer is shared by every controller of a document so that one
// gesture produces one event.
type Normalizer struct {
	last uint64
}

// NewNormalizer returns a normalizer with no gestures seen.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize is called by each zone observing a drop. It returns the event
// only to the owning observer, at most once per gesture.
func (n *Normalizer) Normalize(observer string, evt gesture.SortEvent) (Result, bool) {
	from, okf := rules.ParseID(evt.From)
	to, okt := rules.ParseID(evt.To)
	if !okf || !okt {
		return Result{}, false
	}
	if Suppressed(from, to, evt.OldIndex, evt.NewIndex) {
		return Result{}, false
	}
	owner, ok := Owner(from, to)
	if !ok || owner.ID() != observer {
		return Result{}, false
	}
	if evt.Seq != 0 && evt.Seq <= n.last {
		return Result{}, false
	}
	n.last = evt.Seq

	return Result{
		Event:   Payload(from, to, evt),
		Cleanup: Cleanup(from, to, evt),
	}, true
}

// Suppressed reports whether a drop back onto its own zone is a no-op.
func Suppressed(from, to rules.Ref, oldIndex, newIndex int) bool {
	return from == to && (!rules.Ordered(from.Kind) || oldIndex == newIndex)
}

// Payload builds the event, reading tile order from the document as it is
// right after the drop.
func Payload(from, to rules.Ref, evt gesture.SortEvent) Event {
	ev := Event{DraggedID: evt.ItemID, FromID: from.ID(), ToID: to.ID()}
	if rules.Ordered(to.Kind) {
		ev.ToList = dom.ItemIDs(evt.ToNode)
	}
	if rules.Ordered(from.Kind) && from != to {
		ev.FromList = dom.ItemIDs(evt.FromNode)
	}
	return ev
}

// Cleanup lists the post-conditions a drop carries. A deck placeholder
// landing in a persistent zone must be removed, since the re-render
// replaces it with the real tile and does not know about the copy.
func Cleanup(from, to rules.Ref, evt gesture.SortEvent) []PostCondition {
	src, _ := rules.Lookup(from.Kind)
	if !src.Ephemeral && evt.ItemID != DeckTileID {
		return nil
	}
	if rules.Offers(to.Kind, nil).Mode == rules.Clone {
		return nil
	}
	return []PostCondition{{ItemID: evt.ItemID, ZoneID: to.ID(), node: evt.Item}}
}
