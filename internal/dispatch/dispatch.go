// Package dispatch forwards move events to the server authority. Sending is
// fire-and-forget: failures are logged and the next re-render is the only
// feedback the caller gets.
package dispatch

import (
	"context"
	"time"

	"tinymahjong/internal/logging"
	"tinymahjong/internal/move"
	"tinymahjong/internal/zone"
	"tinymahjong/pkg/utils"
)

// Message is the client to server envelope.
type Message struct {
	Type    string     `json:"type"`
	Topic   string     `json:"topic,omitempty"`
	Ref     string     `json:"ref"`
	Payload move.Event `json:"payload"`
}

// Frame is the server to client envelope.
type Frame struct {
	Type   string `json:"type"`
	Ref    string `json:"ref,omitempty"`
	Markup string `json:"markup,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Frame types pushed by the authority.
const (
	FrameRender = "render"
	FrameError  = "error"
)

// Channel delivers one message to the authority.
type Channel interface {
	Send(ctx context.Context, msg Message) error
}

// Mode selects how messages are addressed.
type Mode int

const (
	// Global addresses every message to the page-level handler.
	Global Mode = iota
	// Scoped addresses messages to the zone's data-target endpoint when it
	// has one.
	Scoped
)

const defaultTimeout = 5 * time.Second

// Dispatcher addresses and sends move events.
type Dispatcher struct {
	ch      Channel
	mode    Mode
	timeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMode sets the addressing mode.
func WithMode(m Mode) Option {
	return func(d *Dispatcher) { d.mode = m }
}

// WithTimeout bounds each send.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// New returns a dispatcher sending over ch.
func New(ch Channel, opts ...Option) *Dispatcher {
	d := &Dispatcher{ch: ch, timeout: defaultTimeout}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Address builds the envelope for an event raised by zone z.
func (d *Dispatcher) Address(z zone.Zone, ev move.Event) Message {
	msg := Message{Type: move.EventName, Ref: utils.Ref(time.Now()), Payload: ev}
	if d.mode == Scoped {
		msg.Topic = z.Target
	}
	return msg
}

// Dispatch sends ev on behalf of z. It never reports failure to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, z zone.Zone, ev move.Event) {
	msg := d.Address(z, ev)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.ch.Send(ctx, msg); err != nil {
		logging.Warnf("dispatch %s %s -> %s (ref %s): %v", ev.DraggedID, ev.FromID, ev.ToID, msg.Ref, err)
		return
	}
	logging.Debugf("dispatched %s %s -> %s ref=%s topic=%q", ev.DraggedID, ev.FromID, ev.ToID, msg.Ref, msg.Topic)
}

// Emit is Dispatch with a background context.
func (d *Dispatcher) Emit(z zone.Zone, ev move.Event) {
	d.Dispatch(context.Background(), z, ev)
}
