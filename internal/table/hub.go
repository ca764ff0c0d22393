package table

import (
	"time"

	"tinymahjong/internal/logging"
)

// IdleTimeout is how long a table survives without activity.
const IdleTimeout = 24 * time.Hour

// NewHub creates a new table hub with cleanup goroutine
func NewHub(seats int) *Hub {
	h := &Hub{Tables: make(map[string]*Table), Seats: seats}
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			h.Sweep(IdleTimeout)
		}
	}()
	return h
}

// Get retrieves an existing table or deals a new one
func (h *Hub) Get(id string) *Table {
	h.Mu.Lock()
	if t, ok := h.Tables[id]; ok {
		h.Mu.Unlock()
		return t
	}
	t := newTable(id, h.Seats)
	t.touched = h.OnTouch
	onCreate := h.OnCreate
	if onCreate != nil {
		t.Mu.Lock()
	}
	h.Tables[id] = t
	h.Mu.Unlock()

	if onCreate != nil {
		defer t.Mu.Unlock()
		onCreate(t)
	}
	return t
}

// Sweep drops tables idle for longer than maxIdle and returns how many.
func (h *Hub) Sweep(maxIdle time.Duration) int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	n := 0
	for id, t := range h.Tables {
		t.Mu.Lock()
		idle := time.Since(t.LastSeen) > maxIdle
		t.Mu.Unlock()
		if idle {
			delete(h.Tables, id)
			n++
			logging.Debugf("table %s swept", id)
		}
	}
	return n
}
