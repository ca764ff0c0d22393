package client

import (
	"context"
	"errors"
	"testing"

	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/dom"
	"tinymahjong/internal/zone"
)

const page = `<html><body>
<div id="concealed-0" class="dropzone uninitialized" data-target="seat-0">
<div id="b1" class="tile draggable"></div><div id="b2" class="tile draggable"></div>
</div>
<div id="exposed-0" class="dropzone uninitialized" data-target="seat-0"></div>
<div id="discards" class="dropzone uninitialized"></div>
</body></html>`

func TestSingleDispatchPerGesture(t *testing.T) {
	rec := &dispatch.Recorder{}
	c, err := New(page, rec, Options{Mode: dispatch.Scoped})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.Bound(); len(got) != 3 {
		t.Fatalf("expected 3 bound zones, got %v", got)
	}

	if err := c.Drag("b1", "exposed-0", 0); err != nil {
		t.Fatalf("drag: %v", err)
	}
	msgs := rec.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Topic != "seat-0" || m.Payload.DraggedID != "b1" || m.Payload.FromID != "concealed-0" {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestRejectedDropDispatchesNothing(t *testing.T) {
	rec := &dispatch.Recorder{}
	c, _ := New(page, rec, Options{})
	err := c.Drag("b1", "discards", 0)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if len(rec.Messages()) != 0 {
		t.Fatalf("nothing should be sent")
	}
	if got := c.Items("concealed-0"); len(got) != 2 {
		t.Fatalf("tile should stay put, got %v", got)
	}
}

func TestApplyRerenderKeepsBindings(t *testing.T) {
	rec := &dispatch.Recorder{}
	c, _ := New(page, rec, Options{})

	// The authority re-renders every zone; the hand moved b2 into the meld.
	err := c.Apply(`<div id="concealed-0" class="dropzone uninitialized"><div id="b1" class="tile draggable"></div></div>
<div id="exposed-0" class="dropzone uninitialized"><div id="b2" class="tile draggable"></div></div>
<div id="discards" class="dropzone uninitialized current-user-discarding"></div>`)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := c.Items("exposed-0"); len(got) != 1 || got[0] != "b2" {
		t.Fatalf("unexpected exposed tiles %v", got)
	}
	if len(c.Bound()) != 3 {
		t.Fatalf("bindings should survive a morph")
	}

	// discards now accepts from the hand, but the hand has no discarding flag
	if err := c.Drag("b1", "discards", 0); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if err := c.Drag("b2", "concealed-0", 1); err != nil {
		t.Fatalf("drag back: %v", err)
	}
	if n := len(rec.Messages()); n != 1 {
		t.Fatalf("expected one dispatch, got %d", n)
	}
}

func TestApplyDropsVanishedZones(t *testing.T) {
	c, _ := New(page, &dispatch.Recorder{}, Options{})
	if err := c.Apply(`<div id="concealed-0" class="dropzone"></div>`); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := c.Bound(); len(got) != 1 || got[0] != "concealed-0" {
		t.Fatalf("unexpected bound zones %v", got)
	}
}

// sendHook runs onSend once, inside the first Send.
type sendHook struct {
	dispatch.Recorder
	onSend func()
}

func (s *sendHook) Send(ctx context.Context, msg dispatch.Message) error {
	if f := s.onSend; f != nil {
		s.onSend = nil
		f()
	}
	return s.Recorder.Send(ctx, msg)
}

func TestZoneReplacedMidDragIsBoundAfterwards(t *testing.T) {
	ch := &sendHook{}
	c, err := New(page, ch, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ch.onSend = func() {
		// a re-render of the hand lands while the drop is settling
		prev := c.doc.ByID("concealed-0")
		repl := dom.Clone(prev)
		dom.AddClass(repl, zone.UninitializedClass)
		dom.AddClass(repl, "current-user-discarding")
		prev.Parent.InsertBefore(repl, prev)
		dom.Detach(prev)
		if fresh := c.registry.Sync(c.doc); len(fresh) != 0 {
			t.Errorf("bind should wait for the drag, got %v", fresh)
		}
	}

	if err := c.Drag("b1", "exposed-0", 0); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if dom.HasClass(c.doc.ByID("concealed-0"), zone.UninitializedClass) {
		t.Fatalf("replaced zone still unbound after the drag")
	}

	// only the new hand node carries the discarding flag
	dom.AddClass(c.doc.ByID("discards"), "current-user-discarding")
	if err := c.Drag("b2", "discards", 0); err != nil {
		t.Fatalf("discard from the rebound hand: %v", err)
	}
	if n := len(ch.Messages()); n != 2 {
		t.Fatalf("expected two dispatches, got %d", n)
	}
}
