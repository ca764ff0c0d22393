package table

import (
	"errors"
	"sync"
	"time"

	"tinymahjong/internal/rules"
)

var (
	// ErrUnknownZone is returned for a zone id the table does not have.
	ErrUnknownZone = errors.New("unknown zone")
	// ErrUnknownItem is returned when the dragged tile is not in its source.
	ErrUnknownItem = errors.New("unknown item")
	// ErrBadList is returned when a reported order is not a permutation of
	// the zone's contents after the drop.
	ErrBadList = errors.New("list does not match zone contents")
)

// Hub manages all active tables.
type Hub struct {
	Mu     sync.Mutex
	Tables map[string]*Table
	Seats  int
	// OnCreate is called once for every table the hub creates. It runs with
	// the table locked, so callers of Get wait until it returns.
	OnCreate func(*Table)
	// OnTouch is handed to every new table and called after Touch.
	OnTouch func(id string, at time.Time)
}

// Table holds the authoritative zone contents of one game.
type Table struct {
	Mu       sync.Mutex
	ID       string
	Seats    int
	Zones    map[string][]string
	Flags    map[string]rules.Flags
	Watchers map[chan []byte]struct{}
	LastSeen time.Time
	Moves    int
	drawn    int
	touched  func(id string, at time.Time)
}

// FlagRequest raises or lowers a session flag on a zone.
type FlagRequest struct {
	Zone string     `json:"zone"`
	Flag rules.Flag `json:"flag"`
	On   bool       `json:"on"`
}

// ZoneView is the render model of one zone.
type ZoneView struct {
	ID      string
	Kind    rules.Kind
	Seat    string
	Classes string
	Target  string
	Tiles   []TileView
}

// TileView is the render model of one tile.
type TileView struct {
	ID        string
	Draggable bool
}

// View is the render model of a table.
type View struct {
	ID    string
	Moves int
	Zones []ZoneView
}
