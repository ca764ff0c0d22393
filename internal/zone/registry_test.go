package zone

import (
	"testing"

	"tinymahjong/internal/dom"
	"tinymahjong/internal/rules"
)

type fakeBinding struct {
	active  bool
	unbound bool
	binder  *fakeBinder
	zoneID  string
}

func (b *fakeBinding) Active() bool { return b.active }
func (b *fakeBinding) Unbind() {
	b.unbound = true
	b.binder.unbinds[b.zoneID]++
}

type fakeBinder struct {
	binds    map[string]int
	unbinds  map[string]int
	bindings map[string]*fakeBinding
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{
		binds:    make(map[string]int),
		unbinds:  make(map[string]int),
		bindings: make(map[string]*fakeBinding),
	}
}

func (f *fakeBinder) Bind(z Zone) Binding {
	f.binds[z.ID]++
	b := &fakeBinding{binder: f, zoneID: z.ID}
	f.bindings[z.ID] = b
	return b
}

const markup = `<html><body>
<div id="concealed-0" class="dropzone uninitialized enable-pull-from-discards" data-target="seat-0"></div>
<div id="discards" class="dropzone uninitialized current-user-discarding"></div>
<div id="scoreboard" class="dropzone uninitialized"></div>
</body></html>`

func TestScanReadsFlagsAndSkipsUnknown(t *testing.T) {
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	zones := Scan(doc)
	if len(zones) != 2 {
		t.Fatalf("expected 2 known zones, got %d", len(zones))
	}
	hand := zones[0]
	if hand.ID != "concealed-0" || !hand.Ordered() || hand.Target != "seat-0" {
		t.Fatalf("unexpected zone %+v", hand)
	}
	if !hand.Flags.Has(rules.EnablePullFromDiscards) || hand.Flags.Has(rules.CurrentUserDiscarding) {
		t.Fatalf("unexpected flags %v", hand.Flags)
	}
	if !zones[1].Flags.Has(rules.CurrentUserDiscarding) || zones[1].Ordered() {
		t.Fatalf("unexpected discards zone %+v", zones[1])
	}
}

func TestSyncBindsOnceAndClearsMarker(t *testing.T) {
	doc, _ := dom.ParseString(markup)
	b := newFakeBinder()
	reg := NewRegistry(b)

	fresh := reg.Sync(doc)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh bindings, got %v", fresh)
	}
	if dom.HasClass(doc.ByID("concealed-0"), UninitializedClass) {
		t.Fatalf("marker should be cleared")
	}
	if !dom.HasClass(doc.ByID("scoreboard"), UninitializedClass) {
		t.Fatalf("unknown zone should be left untouched")
	}

	// second scan with no marker: nothing happens
	if fresh := reg.Sync(doc); len(fresh) != 0 {
		t.Fatalf("expected idempotent rescan, got %v", fresh)
	}

	// marker comes back on the same node after a re-render
	dom.AddClass(doc.ByID("concealed-0"), UninitializedClass)
	if fresh := reg.Sync(doc); len(fresh) != 0 {
		t.Fatalf("same node must not be re-bound, got %v", fresh)
	}
	if b.binds["concealed-0"] != 1 {
		t.Fatalf("expected a single bind, got %d", b.binds["concealed-0"])
	}
	if dom.HasClass(doc.ByID("concealed-0"), UninitializedClass) {
		t.Fatalf("marker should be cleared again")
	}
}

func TestSyncRebindsReplacedNode(t *testing.T) {
	doc, _ := dom.ParseString(markup)
	b := newFakeBinder()
	reg := NewRegistry(b)
	reg.Sync(doc)

	old := doc.ByID("discards")
	dom.Detach(old)
	if err := doc.Patch(`<div id="concealed-0" class="dropzone"></div><div id="discards" class="dropzone uninitialized"></div>`); err != nil {
		t.Fatalf("patch: %v", err)
	}
	fresh := reg.Sync(doc)
	if len(fresh) != 1 || fresh[0] != "discards" {
		t.Fatalf("expected discards to be re-bound, got %v", fresh)
	}
	if b.unbinds["discards"] != 1 {
		t.Fatalf("old binding should be released")
	}
}

func TestSyncDefersWhileActive(t *testing.T) {
	doc, _ := dom.ParseString(markup)
	b := newFakeBinder()
	reg := NewRegistry(b)
	reg.Sync(doc)
	b.bindings["discards"].active = true

	dom.Detach(doc.ByID("discards"))
	_ = doc.Patch(`<div id="concealed-0" class="dropzone"></div><div id="discards" class="dropzone uninitialized"></div>`)
	if fresh := reg.Sync(doc); len(fresh) != 0 {
		t.Fatalf("active zone must not be re-bound, got %v", fresh)
	}

	b.bindings["discards"].active = false
	if fresh := reg.Sync(doc); len(fresh) != 1 {
		t.Fatalf("expected bind once the session settled, got %v", fresh)
	}
}

func TestSyncUnbindsVanishedZones(t *testing.T) {
	doc, _ := dom.ParseString(markup)
	b := newFakeBinder()
	reg := NewRegistry(b)
	reg.Sync(doc)

	_ = doc.Patch(`<div id="concealed-0" class="dropzone"></div>`)
	reg.Sync(doc)
	if reg.Bound("discards") {
		t.Fatalf("discards should be unbound")
	}
	if got := reg.IDs(); len(got) != 1 || got[0] != "concealed-0" {
		t.Fatalf("unexpected bound ids %v", got)
	}
}

func TestDraggable(t *testing.T) {
	doc, _ := dom.ParseString(`<html><body>
<div id="discards" class="dropzone dglow-d2"><div id="d1" class="tile draggable"></div><div id="d2" class="tile"></div></div>
<div id="concealed-0" class="dropzone"><div id="b1" class="tile draggable"></div><div id="b2" class="tile"></div></div>
</body></html>`)
	zones := Scan(doc)
	discards, hand := zones[0], zones[1]

	cases := []struct {
		z    Zone
		item string
		want bool
	}{
		{discards, "d1", false},
		{discards, "d2", true},
		{hand, "b1", true},
		{hand, "b2", false},
	}
	for _, c := range cases {
		if got := Draggable(c.z.Node, c.z.Rule, doc.ByID(c.item)); got != c.want {
			t.Fatalf("Draggable(%s, %s) = %v, want %v", c.z.ID, c.item, got, c.want)
		}
	}
}
