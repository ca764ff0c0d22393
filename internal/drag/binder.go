package drag

import (
	"tinymahjong/internal/dom"
	"tinymahjong/internal/gesture"
	"tinymahjong/internal/move"
	"tinymahjong/internal/zone"
)

// Binder creates a Controller for each zone the registry binds and
// registers it with the engine.
type Binder struct {
	Doc        *dom.Document
	Engine     *gesture.Engine
	Normalizer *move.Normalizer
	Emitter    Emitter
	// Seat resolves seated highlight targets for table-wide zones.
	Seat string

	// OnBind, if set, is called with every new controller.
	OnBind func(*Controller)
}

// Bind implements zone.Binder.
func (b *Binder) Bind(z zone.Zone) zone.Binding {
	c := &Controller{
		z:      z,
		doc:    b.Doc,
		engine: b.Engine,
		norm:   b.Normalizer,
		emit:   b.Emitter,
		seat:   b.Seat,
	}
	b.Engine.Register(z.ID, c)
	if b.OnBind != nil {
		b.OnBind(c)
	}
	return c
}
