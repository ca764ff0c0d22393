// Package rules is the transfer rule table: for every zone kind, which
// zones may deposit into it and which zones it may contribute to, as a pure
// function of the session flags the zone declares.
package rules

// OfferMode tags the Offer variant.
type OfferMode int

const (
	// Frozen permits no outgoing transfer.
	Frozen OfferMode = iota
	// Open permits transfers to the kinds in Offer.To.
	Open
	// Clone permits transfers to any accepting zone and leaves a copy behind.
	Clone
)

func (m OfferMode) String() string {
	switch m {
	case Open:
		return "open"
	case Clone:
		return "clone"
	default:
		return "frozen"
	}
}

// Offer is the outgoing policy of a zone.
type Offer struct {
	Mode OfferMode
	To   Set
}

func open(kinds ...Kind) Offer { return Offer{Mode: Open, To: NewSet(kinds...)} }
func frozen() Offer            { return Offer{Mode: Frozen} }
func clone() Offer             { return Offer{Mode: Clone} }

// Permits reports whether the offer lets a tile go to kind k.
func (o Offer) Permits(k Kind) bool {
	switch o.Mode {
	case Open:
		return o.To.Has(k)
	case Clone:
		return true
	default:
		return false
	}
}

// Rule is one row of the table.
type Rule struct {
	Kind Kind
	// Seated kinds exist once per seat and carry a "-<seat>" suffix.
	Seated bool
	// Ordered zones report their tile order to the server.
	Ordered bool
	// Reads lists the only session flags the rule looks at.
	Reads []Flag
	// Highlights are cued with a description while a drag from here runs.
	Highlights []Kind
	// GlowGated zones only let the tile named by a dglow-<id> class move.
	GlowGated bool
	// Ephemeral zones offer placeholders the next re-render will not
	// remove from their destination.
	Ephemeral bool

	accepts func(Flags) Set
	offers  func(Flags) Offer
}

var table = map[Kind]Rule{
	Discards: {
		Kind:       Discards,
		Reads:      []Flag{CurrentUserDiscarding, EnablePullFromDiscards},
		Highlights: []Kind{WinTile},
		GlowGated:  true,
		accepts: func(f Flags) Set {
			if f.Has(CurrentUserDiscarding) {
				return NewSet(Concealed, Exposed, PeekTile)
			}
			return NewSet()
		},
		offers: func(f Flags) Offer {
			if f.Has(EnablePullFromDiscards) {
				return open(Exposed, WinTile)
			}
			return frozen()
		},
	},
	Concealed: {
		Kind:       Concealed,
		Seated:     true,
		Ordered:    true,
		Reads:      []Flag{CurrentUserDiscarding, EnablePullFromDiscards},
		Highlights: []Kind{HiddenGongs, WinTile},
		accepts: func(f Flags) Set {
			s := NewSet(Exposed, HiddenGongs, CorrectionTiles, DeckOffer, PeekTile)
			if f.Has(EnablePullFromDiscards) {
				s[Discards] = struct{}{}
			}
			return s
		},
		offers: func(f Flags) Offer {
			o := open(Exposed, HiddenGongs, WinTile)
			if f.Has(CurrentUserDiscarding) {
				o.To[Discards] = struct{}{}
			}
			return o
		},
	},
	Exposed: {
		Kind:       Exposed,
		Seated:     true,
		Ordered:    true,
		Highlights: []Kind{HiddenGongs, WinTile},
		accepts:    func(Flags) Set { return NewSet(Concealed, HiddenGongs, Discards) },
		offers:     func(Flags) Offer { return open(Concealed, HiddenGongs, Discards, WinTile) },
	},
	HiddenGongs: {
		Kind:    HiddenGongs,
		Seated:  true,
		Ordered: true,
		accepts: func(Flags) Set { return NewSet(Concealed, Exposed, PeekTile) },
		// outgoing only to recover from accidental drops
		offers: func(Flags) Offer { return open(Concealed, Exposed) },
	},
	PeekTile: {
		Kind:       PeekTile,
		Seated:     true,
		Highlights: []Kind{HiddenGongs, WinTile},
		accepts:    func(Flags) Set { return NewSet() },
		offers:     func(Flags) Offer { return open(Discards, Concealed, HiddenGongs, WinTile) },
	},
	CorrectionTiles: {
		Kind:    CorrectionTiles,
		accepts: func(Flags) Set { return NewSet() },
		offers:  func(Flags) Offer { return clone() },
	},
	DeckOffer: {
		Kind:      DeckOffer,
		Ephemeral: true,
		accepts:   func(Flags) Set { return NewSet() },
		offers:    func(Flags) Offer { return clone() },
	},
	WinTile: {
		Kind:    WinTile,
		Seated:  true,
		accepts: func(Flags) Set { return NewSet(Discards, Concealed, Exposed, PeekTile) },
		// undone through the undo control, never by dragging out
		offers: func(Flags) Offer { return frozen() },
	},
}

// Lookup returns the rule for kind k.
func Lookup(k Kind) (Rule, bool) {
	r, ok := table[k]
	return r, ok
}

// All returns every rule, sorted by kind.
func All() []Rule {
	kinds := make(Set, len(table))
	for k := range table {
		kinds[k] = struct{}{}
	}
	out := make([]Rule, 0, len(table))
	for _, k := range kinds.Kinds() {
		out = append(out, table[k])
	}
	return out
}

// Accepts returns the kinds that may deposit into a zone of kind k.
func Accepts(k Kind, f Flags) Set {
	r, ok := table[k]
	if !ok {
		return NewSet()
	}
	return r.accepts(only(r.Reads, f))
}

// Offers returns the outgoing policy of a zone of kind k.
func Offers(k Kind, f Flags) Offer {
	r, ok := table[k]
	if !ok {
		return frozen()
	}
	return r.offers(only(r.Reads, f))
}

// Ordered reports whether tile order in zones of kind k is meaningful.
func Ordered(k Kind) bool {
	return table[k].Ordered
}

// CanPull reports whether from may send a tile to to.
func CanPull(from Ref, fromFlags Flags, to Ref) bool {
	return peers(from, to) && Offers(from.Kind, fromFlags).Permits(to.Kind)
}

// CanPut reports whether to may receive a tile from from.
func CanPut(to Ref, toFlags Flags, from Ref) bool {
	return peers(from, to) && Accepts(to.Kind, toFlags).Has(from.Kind)
}

// Allowed reports whether a tile may move between two distinct zones: the
// source must offer and the destination must accept.
func Allowed(from Ref, fromFlags Flags, to Ref, toFlags Flags) bool {
	if from == to {
		return false
	}
	return CanPull(from, fromFlags, to) && CanPut(to, toFlags, from)
}

// only drops every flag the rule does not declare.
func only(reads []Flag, f Flags) Flags {
	out := make(Flags, len(reads))
	for _, name := range reads {
		if f.Has(name) {
			out[name] = true
		}
	}
	return out
}
