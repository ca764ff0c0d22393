package rules

import (
	"sort"
	"strings"
)

// Kind names a family of zones. Seated kinds exist once per seat.
type Kind string

const (
	Concealed       Kind = "concealed"
	Exposed         Kind = "exposed"
	HiddenGongs     Kind = "hiddengongs"
	PeekTile        Kind = "peektile"
	WinTile         Kind = "wintile"
	Discards        Kind = "discards"
	CorrectionTiles Kind = "correctiontiles"
	DeckOffer       Kind = "deckoffer"
)

// Flag is a session flag rendered as a class on the zone element.
type Flag string

const (
	CurrentUserDiscarding  Flag = "current-user-discarding"
	EnablePullFromDiscards Flag = "enable-pull-from-discards"
)

// Flags is the set of session flags currently raised on a zone.
type Flags map[Flag]bool

// Has reports whether f is raised. A nil Flags has nothing raised.
func (f Flags) Has(flag Flag) bool {
	return f[flag]
}

// Set is an unordered set of zone kinds.
type Set map[Kind]struct{}

// NewSet builds a set from kinds.
func NewSet(kinds ...Kind) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Kinds returns the members sorted by name.
func (s Set) Kinds() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ref identifies a zone: its kind plus the seat for seated kinds.
type Ref struct {
	Kind Kind
	Seat string
}

// ParseID splits a zone id such as "concealed-0" or "discards".
func ParseID(id string) (Ref, bool) {
	if r, ok := table[Kind(id)]; ok && !r.Seated {
		return Ref{Kind: Kind(id)}, true
	}
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return Ref{}, false
	}
	k, seat := Kind(id[:i]), id[i+1:]
	if r, ok := table[k]; !ok || !r.Seated {
		return Ref{}, false
	}
	return Ref{Kind: k, Seat: seat}, true
}

// ID renders the zone id.
func (r Ref) ID() string {
	if r.Seat == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + "-" + r.Seat
}

// peers reports whether two zones may exchange tiles at all: seated zones
// only trade within their own seat.
func peers(a, b Ref) bool {
	return a.Seat == "" || b.Seat == "" || a.Seat == b.Seat
}
