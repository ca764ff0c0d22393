package table

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/dom"
	"tinymahjong/internal/move"
	"tinymahjong/internal/rules"
	"tinymahjong/internal/zone"
)

func TestApplyDropAcrossZones(t *testing.T) {
	tb := newTable("t", 2)
	hand := tb.Zones["concealed-0"]
	rest := append([]string(nil), hand[1:]...)

	n, err := tb.ApplyDrop(move.Event{
		DraggedID: hand[0],
		FromID:    "concealed-0",
		ToID:      "exposed-0",
		FromList:  rest,
		ToList:    []string{hand[0]},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected move 1, got %d", n)
	}
	if !reflect.DeepEqual(tb.Zones["concealed-0"], rest) || len(tb.Zones["exposed-0"]) != 1 {
		t.Fatalf("unexpected zones %v / %v", tb.Zones["concealed-0"], tb.Zones["exposed-0"])
	}
}

func TestApplyDropRejectsStructuralErrors(t *testing.T) {
	tb := newTable("t", 1)
	cases := []struct {
		name string
		ev   move.Event
		want error
	}{
		{"unknown zone", move.Event{DraggedID: "t0-01", FromID: "concealed-0", ToID: "exposed-3"}, ErrUnknownZone},
		{"missing tile", move.Event{DraggedID: "nope", FromID: "concealed-0", ToID: "exposed-0"}, ErrUnknownItem},
		{"bad to list", move.Event{DraggedID: "t0-01", FromID: "concealed-0", ToID: "exposed-0", ToList: []string{"x"}}, ErrBadList},
		{"bad reorder", move.Event{DraggedID: "t0-01", FromID: "concealed-0", ToID: "concealed-0", ToList: []string{"t0-01"}}, ErrBadList},
	}
	for _, c := range cases {
		if _, err := tb.ApplyDrop(c.ev); !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
	}
	if tb.Moves != 0 {
		t.Fatalf("rejected drops must not count")
	}
}

func TestDeckDrawMintsTile(t *testing.T) {
	tb := newTable("t", 1)
	hand := tb.Zones["concealed-0"]
	to := append(append([]string(nil), hand...), move.DeckTileID)

	if _, err := tb.ApplyDrop(move.Event{DraggedID: move.DeckTileID, FromID: "deckoffer", ToID: "concealed-0", ToList: to}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := tb.Zones["concealed-0"]
	if len(got) != len(hand)+1 || got[len(got)-1] != "draw-1" {
		t.Fatalf("expected drawn tile, got %v", got)
	}
	if !reflect.DeepEqual(tb.Zones["deckoffer"], []string{move.DeckTileID}) {
		t.Fatalf("deck offer must keep its placeholder")
	}
}

func TestDiscardGlowsLastTile(t *testing.T) {
	tb := newTable("t", 1)
	hand := tb.Zones["concealed-0"]
	for _, id := range hand[:2] {
		if _, err := tb.ApplyDrop(move.Event{DraggedID: id, FromID: "concealed-0", ToID: "discards"}); err != nil {
			t.Fatalf("discard %s: %v", id, err)
		}
	}
	tb.Mu.Lock()
	markup, err := tb.MarkupLocked()
	tb.Mu.Unlock()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := dom.ParseString("<html><body>" + markup + "</body></html>")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var discards zone.Zone
	for _, z := range zone.Scan(doc) {
		if z.ID == "discards" {
			discards = z
		}
	}
	if !dom.HasClass(discards.Node, "dglow-"+hand[1]) || dom.HasClass(discards.Node, "dglow-"+hand[0]) {
		t.Fatalf("unexpected classes %v", dom.Classes(discards.Node))
	}
	if !discards.Flags.Has(rules.CurrentUserDiscarding) || !discards.Uninitialized {
		t.Fatalf("unexpected zone %+v", discards)
	}
}

func TestRenderedMarkupScans(t *testing.T) {
	tb := newTable("t", 2)
	tb.Mu.Lock()
	markup, err := tb.MarkupLocked()
	tb.Mu.Unlock()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, _ := dom.ParseString("<html><body>" + markup + "</body></html>")
	zones := zone.Scan(doc)
	if len(zones) != 2*5+3 {
		t.Fatalf("expected 13 zones, got %d", len(zones))
	}
	if zones[0].ID != "concealed-0" || zones[0].Target != "seat-0" || len(dom.ItemIDs(zones[0].Node)) != handSize {
		t.Fatalf("unexpected first zone %+v", zones[0])
	}
}

func TestSetFlagAndBroadcast(t *testing.T) {
	tb := newTable("t", 1)
	if err := tb.SetFlag(FlagRequest{Zone: "discards", Flag: rules.EnablePullFromDiscards, On: true}); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := tb.SetFlag(FlagRequest{Zone: "nowhere", Flag: rules.EnablePullFromDiscards}); !errors.Is(err, ErrUnknownZone) {
		t.Fatalf("expected unknown zone, got %v", err)
	}

	ch := make(chan []byte, 1)
	tb.AddWatcher(ch)
	tb.Broadcast()
	var f dispatch.Frame
	if err := json.Unmarshal(<-ch, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Type != dispatch.FrameRender || !strings.Contains(f.Markup, "enable-pull-from-discards") {
		t.Fatalf("unexpected frame %+v", f)
	}
	tb.RemoveWatcher(ch)
	tb.Broadcast()
	select {
	case <-ch:
		t.Fatalf("removed watcher got a frame")
	default:
	}
}

func TestHubSweep(t *testing.T) {
	h := NewHub(1)
	created := 0
	h.OnCreate = func(*Table) { created++ }
	old := h.Get("old")
	h.Get("fresh")
	if h.Get("old") != old || created != 2 {
		t.Fatalf("Get should reuse tables")
	}

	old.Mu.Lock()
	old.LastSeen = time.Now().Add(-25 * time.Hour)
	old.Mu.Unlock()

	if n := h.Sweep(IdleTimeout); n != 1 {
		t.Fatalf("expected one swept table, got %d", n)
	}
	h.Mu.Lock()
	_, okOld := h.Tables["old"]
	_, okFresh := h.Tables["fresh"]
	h.Mu.Unlock()
	if okOld || !okFresh {
		t.Fatalf("wrong table swept")
	}
}

func TestReset(t *testing.T) {
	tb := newTable("t", 1)
	_, _ = tb.ApplyDrop(move.Event{DraggedID: "t0-01", FromID: "concealed-0", ToID: "exposed-0"})
	tb.Reset()
	if tb.Moves != 0 || len(tb.Zones["exposed-0"]) != 0 || len(tb.Zones["concealed-0"]) != handSize {
		t.Fatalf("reset did not redeal")
	}
}

func TestReplayRestoresPosition(t *testing.T) {
	live := newTable("t", 1)
	hand := live.Zones["concealed-0"]
	drawTo := append(append([]string(nil), hand[1:]...), move.DeckTileID)
	log := []move.Event{
		{DraggedID: hand[0], FromID: "concealed-0", ToID: "exposed-0"},
		{DraggedID: move.DeckTileID, FromID: "deckoffer", ToID: "concealed-0", ToList: drawTo},
	}
	for _, ev := range log {
		if _, err := live.ApplyDrop(ev); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	restored := newTable("t", 1)
	restored.Mu.Lock()
	n, err := restored.ReplayLocked(log)
	restored.Mu.Unlock()
	if err != nil || n != 2 {
		t.Fatalf("replay: %d %v", n, err)
	}
	if !reflect.DeepEqual(restored.Zones, live.Zones) || restored.Moves != live.Moves {
		t.Fatalf("replayed table differs:\n%v\n%v", restored.Zones, live.Zones)
	}
	if !reflect.DeepEqual(restored.Zones["concealed-0"][len(hand)-1:], []string{"draw-1"}) {
		t.Fatalf("drawn tile should keep its id, got %v", restored.Zones["concealed-0"])
	}
}

func TestReplayStopsAtStaleMove(t *testing.T) {
	tb := newTable("t", 1)
	tb.Mu.Lock()
	n, err := tb.ReplayLocked([]move.Event{
		{DraggedID: "t0-01", FromID: "concealed-0", ToID: "exposed-0"},
		{DraggedID: "t0-01", FromID: "concealed-0", ToID: "exposed-0"},
	})
	tb.Mu.Unlock()
	if n != 1 || !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected stop after one move, got %d %v", n, err)
	}
}

func TestTouchReportsToHub(t *testing.T) {
	h := NewHub(1)
	var seen []string
	h.OnTouch = func(id string, at time.Time) {
		if at.IsZero() {
			t.Errorf("zero touch time")
		}
		seen = append(seen, id)
	}
	h.Get("a").Touch()
	newTable("b", 1).Touch()
	if !reflect.DeepEqual(seen, []string{"a"}) {
		t.Fatalf("unexpected touches %v", seen)
	}
}

func TestGetHoldsTableDuringCreate(t *testing.T) {
	h := NewHub(1)
	h.OnCreate = func(tb *Table) {
		if tb.Mu.TryLock() {
			tb.Mu.Unlock()
			t.Errorf("OnCreate should run with the table locked")
		}
		tb.Moves = 7
	}
	tb := h.Get("x")
	tb.Mu.Lock()
	moves := tb.Moves
	tb.Mu.Unlock()
	if moves != 7 {
		t.Fatalf("create hook lost, moves=%d", moves)
	}
}
