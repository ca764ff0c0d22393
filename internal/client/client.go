// Package client assembles the drag layer over one document: the zone
// registry, the gesture engine, a controller per zone and the dispatcher.
package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/dom"
	"tinymahjong/internal/drag"
	"tinymahjong/internal/gesture"
	"tinymahjong/internal/logging"
	"tinymahjong/internal/move"
	"tinymahjong/internal/zone"
)

// ErrRejected is returned by Drag when the hovered target refuses the tile.
var ErrRejected = errors.New("client: drop target rejected")

// Options configure a Client.
type Options struct {
	// Seat is the local player's seat.
	Seat string
	// Mode selects global or per-zone addressing.
	Mode dispatch.Mode
}

// Client is safe for concurrent use: re-renders and gestures are
// serialized on one mutex.
type Client struct {
	ID string

	mu       sync.Mutex
	doc      *dom.Document
	engine   *gesture.Engine
	registry *zone.Registry
	binder   *drag.Binder
}

// New parses the initial markup and binds its zones.
func New(markup string, ch dispatch.Channel, opts Options) (*Client, error) {
	doc, err := dom.ParseString(markup)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	if opts.Seat == "" {
		opts.Seat = "0"
	}
	c := &Client{
		ID:     uuid.NewString(),
		doc:    doc,
		engine: gesture.New(doc),
	}
	c.binder = &drag.Binder{
		Doc:        doc,
		Engine:     c.engine,
		Normalizer: move.NewNormalizer(),
		Emitter:    dispatch.New(ch, dispatch.WithMode(opts.Mode)),
		Seat:       opts.Seat,
	}
	c.registry = zone.NewRegistry(c.binder)
	c.registry.Sync(doc)
	return c, nil
}

// Apply patches a server re-render into the document and binds any zone
// that came back uninitialized.
func (c *Client) Apply(markup string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.doc.Patch(markup); err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	if fresh := c.registry.Sync(c.doc); len(fresh) > 0 {
		logging.Debugf("client %s bound %v", c.ID, fresh)
	}
	return nil
}

// Drag performs a complete gesture: pick up item, hover zone at index and
// release. It returns ErrRejected when the target refused the drop.
func (c *Client) Drag(itemID, zoneID string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, err := c.engine.Begin(itemID)
	if err != nil {
		return err
	}
	accepted := d.Hover(zoneID, index)
	d.Release()
	// zones replaced while the drag ran were left unbound
	if fresh := c.registry.Sync(c.doc); len(fresh) > 0 {
		logging.Debugf("client %s bound %v after drag", c.ID, fresh)
	}
	if !accepted {
		return fmt.Errorf("%w: %s to %s", ErrRejected, itemID, zoneID)
	}
	return nil
}

// Zones returns a snapshot of the known zones.
func (c *Client) Zones() []zone.Zone {
	c.mu.Lock()
	defer c.mu.Unlock()
	return zone.Scan(c.doc)
}

// Bound returns the ids of zones that currently have a controller.
func (c *Client) Bound() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.IDs()
}

// Items returns the tile ids of zone id, or nil if there is no such zone.
func (c *Client) Items(id string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.doc.ByID(id)
	if n == nil {
		return nil
	}
	return dom.ItemIDs(n)
}

// Markup renders the current document.
func (c *Client) Markup() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.String()
}
