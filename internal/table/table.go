package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/logging"
	"tinymahjong/internal/move"
	"tinymahjong/internal/rules"
	"tinymahjong/internal/templates"
)

const handSize = 13

var (
	seatedKinds = []rules.Kind{rules.Concealed, rules.Exposed, rules.HiddenGongs, rules.PeekTile, rules.WinTile}
	sharedKinds = []rules.Kind{rules.Discards, rules.CorrectionTiles, rules.DeckOffer}
)

func newTable(id string, seats int) *Table {
	t := &Table{
		ID:       id,
		Seats:    seats,
		Watchers: make(map[chan []byte]struct{}),
		LastSeen: time.Now(),
	}
	t.reset()
	return t
}

// Touch updates the last seen timestamp for a table.
func (t *Table) Touch() {
	now := time.Now()
	t.Mu.Lock()
	t.LastSeen = now
	touched := t.touched
	t.Mu.Unlock()
	if touched != nil {
		touched(t.ID, now)
	}
}

// Reset deals a fresh table.
func (t *Table) Reset() {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	t.reset()
}

func (t *Table) reset() {
	t.Zones = make(map[string][]string)
	t.Flags = make(map[string]rules.Flags)
	t.Moves, t.drawn = 0, 0
	for s := 0; s < t.Seats; s++ {
		seat := fmt.Sprint(s)
		hand := make([]string, 0, handSize)
		for n := 1; n <= handSize; n++ {
			hand = append(hand, fmt.Sprintf("t%s-%02d", seat, n))
		}
		t.Zones[zoneID(rules.Concealed, seat)] = hand
		t.Zones[zoneID(rules.Exposed, seat)] = []string{}
		t.Zones[zoneID(rules.HiddenGongs, seat)] = []string{}
		t.Zones[zoneID(rules.PeekTile, seat)] = []string{"peek-" + seat}
		t.Zones[zoneID(rules.WinTile, seat)] = []string{}
	}
	t.Zones[string(rules.Discards)] = []string{}
	t.Zones[string(rules.CorrectionTiles)] = []string{"fix-1", "fix-2", "fix-3"}
	t.Zones[string(rules.DeckOffer)] = []string{move.DeckTileID}

	// seat 0 starts
	t.Flags[zoneID(rules.Concealed, "0")] = rules.Flags{rules.CurrentUserDiscarding: true}
	t.Flags[string(rules.Discards)] = rules.Flags{rules.CurrentUserDiscarding: true}
}

func zoneID(k rules.Kind, seat string) string {
	return rules.Ref{Kind: k, Seat: seat}.ID()
}

// ApplyDrop applies a dropped event and returns the move number. Only
// structural checks are made: both zones exist, the tile is in its source,
// and any reported order is a permutation of the zone after the drop.
func (t *Table) ApplyDrop(ev move.Event) (int, error) {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.applyLocked(ev)
}

// ReplayLocked re-applies a persisted move log on a freshly dealt table
// (must be called with lock held). It stops at the first move that no
// longer applies and returns how many did.
func (t *Table) ReplayLocked(log []move.Event) (int, error) {
	for i, ev := range log {
		if _, err := t.applyLocked(ev); err != nil {
			return i, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return len(log), nil
}

func (t *Table) applyLocked(ev move.Event) (int, error) {
	from, ok := t.Zones[ev.FromID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownZone, ev.FromID)
	}
	to, ok := t.Zones[ev.ToID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownZone, ev.ToID)
	}
	at := indexOf(from, ev.DraggedID)
	if at < 0 {
		return 0, fmt.Errorf("%w: %s not in %s", ErrUnknownItem, ev.DraggedID, ev.FromID)
	}

	if ev.FromID == ev.ToID {
		if ev.ToList != nil {
			if !samePieces(ev.ToList, from) {
				return 0, fmt.Errorf("%w: %s", ErrBadList, ev.ToID)
			}
			t.Zones[ev.ToID] = append([]string(nil), ev.ToList...)
		}
		return t.accepted(ev), nil
	}

	ref, _ := rules.ParseID(ev.FromID)
	cloned := rules.Offers(ref.Kind, nil).Mode == rules.Clone

	newFrom := from
	if !cloned {
		newFrom = remove(from, at)
		if ev.FromList != nil {
			if !samePieces(ev.FromList, newFrom) {
				return 0, fmt.Errorf("%w: %s", ErrBadList, ev.FromID)
			}
			newFrom = append([]string(nil), ev.FromList...)
		}
	}

	newTo := append(append([]string(nil), to...), ev.DraggedID)
	if ev.ToList != nil {
		if !samePieces(ev.ToList, newTo) {
			return 0, fmt.Errorf("%w: %s", ErrBadList, ev.ToID)
		}
		newTo = append([]string(nil), ev.ToList...)
	}
	if cloned {
		// the copy gets an id of its own
		newTo[indexOf(newTo, ev.DraggedID)] = t.mint(ev.DraggedID)
	}

	t.Zones[ev.FromID] = newFrom
	t.Zones[ev.ToID] = newTo
	return t.accepted(ev), nil
}

func (t *Table) accepted(ev move.Event) int {
	t.Moves++
	t.LastSeen = time.Now()
	logging.Debugf("table %s move %d: %s %s -> %s", t.ID, t.Moves, ev.DraggedID, ev.FromID, ev.ToID)
	return t.Moves
}

func (t *Table) mint(item string) string {
	t.drawn++
	if item == move.DeckTileID {
		return fmt.Sprintf("draw-%d", t.drawn)
	}
	return fmt.Sprintf("%s-%d", item, t.drawn)
}

// SetFlag raises or lowers a session flag on a zone.
func (t *Table) SetFlag(req FlagRequest) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if _, ok := t.Zones[req.Zone]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownZone, req.Zone)
	}
	f := t.Flags[req.Zone]
	if f == nil {
		f = make(rules.Flags)
		t.Flags[req.Zone] = f
	}
	if req.On {
		f[req.Flag] = true
	} else {
		delete(f, req.Flag)
	}
	return nil
}

// ViewLocked returns the render model (must be called with lock held).
func (t *Table) ViewLocked() View {
	v := View{ID: t.ID, Moves: t.Moves}
	for s := 0; s < t.Seats; s++ {
		seat := fmt.Sprint(s)
		for _, k := range seatedKinds {
			v.Zones = append(v.Zones, t.zoneView(rules.Ref{Kind: k, Seat: seat}))
		}
	}
	for _, k := range sharedKinds {
		v.Zones = append(v.Zones, t.zoneView(rules.Ref{Kind: k}))
	}
	return v
}

func (t *Table) zoneView(ref rules.Ref) ZoneView {
	id := ref.ID()
	rule, _ := rules.Lookup(ref.Kind)
	tiles := t.Zones[id]

	classes := []string{"dropzone", "uninitialized"}
	var flags []string
	for f, on := range t.Flags[id] {
		if on {
			flags = append(flags, string(f))
		}
	}
	sort.Strings(flags)
	classes = append(classes, flags...)
	if rule.GlowGated && len(tiles) > 0 {
		classes = append(classes, "dglow-"+tiles[len(tiles)-1])
	}

	zv := ZoneView{ID: id, Kind: ref.Kind, Seat: ref.Seat, Classes: strings.Join(classes, " ")}
	if ref.Seat != "" {
		zv.Target = "seat-" + ref.Seat
	}
	for _, tile := range tiles {
		zv.Tiles = append(zv.Tiles, TileView{ID: tile, Draggable: !rule.GlowGated})
	}
	return zv
}

// MarkupLocked renders the zones (must be called with lock held).
func (t *Table) MarkupLocked() (string, error) {
	var buf bytes.Buffer
	if err := templates.RenderZones(&buf, t.ViewLocked()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FrameLocked encodes the current render frame (must be called with lock held).
func (t *Table) FrameLocked() []byte {
	markup, err := t.MarkupLocked()
	if err != nil {
		logging.Errorf("render table %s: %v", t.ID, err)
		data, _ := json.Marshal(dispatch.Frame{Type: dispatch.FrameError, Error: "render failed"})
		return data
	}
	data, _ := json.Marshal(dispatch.Frame{Type: dispatch.FrameRender, Markup: markup})
	return data
}

// Broadcast sends the current render frame to all watchers.
func (t *Table) Broadcast() {
	t.Mu.Lock()
	data := t.FrameLocked()
	for ch := range t.Watchers {
		select {
		case ch <- data:
		default:
		}
	}
	t.Mu.Unlock()
}

// AddWatcher adds a new watcher channel to the table.
func (t *Table) AddWatcher(ch chan []byte) {
	t.Mu.Lock()
	t.Watchers[ch] = struct{}{}
	t.Mu.Unlock()
}

// RemoveWatcher removes a watcher channel from the table.
func (t *Table) RemoveWatcher(ch chan []byte) {
	t.Mu.Lock()
	delete(t.Watchers, ch)
	t.Mu.Unlock()
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func remove(list []string, i int) []string {
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// samePieces reports whether a and b hold the same ids with the same
// multiplicity.
func samePieces(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[string]int, len(a))
	for _, v := range a {
		count[v]++
	}
	for _, v := range b {
		if count[v] == 0 {
			return false
		}
		count[v]--
	}
	return true
}
