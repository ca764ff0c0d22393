package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/logging"
	"tinymahjong/internal/move"
	"tinymahjong/internal/storage"
	"tinymahjong/internal/table"
	"tinymahjong/internal/templates"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Hub   *table.Hub
	Store *storage.Store
}

// NewHandler creates a new handler instance
func NewHandler(hub *table.Hub, store *storage.Store) *Handler {
	h := &Handler{Hub: hub, Store: store}
	hub.OnCreate = h.restoreTable
	hub.OnTouch = h.touchTable
	return h
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleNew creates a new table and redirects to it
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	http.Redirect(w, r, "/"+id, http.StatusFound)
}

// HandlePage serves the home page or a table page
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" || path == "index.html" {
		stats, err := h.Store.FetchStats(r.Context())
		if err != nil {
			logging.Warnf("fetch stats: %v", err)
		}
		templates.WriteHomeHTML(w, stats)
		return
	}
	t := h.Hub.Get(path)
	t.Touch()
	t.Mu.Lock()
	view := t.ViewLocked()
	t.Mu.Unlock()
	templates.WriteTableHTML(w, view)
}

// HandleMarkup serves the zone markup of a table
func (h *Handler) HandleMarkup(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/markup/")
	t := h.Hub.Get(id)
	t.Mu.Lock()
	markup, err := t.MarkupLocked()
	t.Mu.Unlock()
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(markup))
}

// HandleSSE streams render frames as Server-Sent Events
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sse/")
	t := h.Hub.Get(id)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 16)
	t.AddWatcher(ch)
	defer t.RemoveWatcher(ch)

	t.Mu.Lock()
	initial := t.FrameLocked()
	t.Mu.Unlock()

	_, _ = fmt.Fprintf(w, "data: %s\n\n", initial)
	flusher.Flush()

	t.Touch()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = w.Write([]byte("data: {}\n\n"))
			flusher.Flush()
		case msg := <-ch:
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// HandleWS accepts dropped messages and pushes render frames over one
// websocket connection
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/ws/")
	t := h.Hub.Get(id)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("upgrade failed for table %s: %v", id, err)
		return
	}
	defer conn.Close()

	ch := make(chan []byte, 16)
	t.AddWatcher(ch)
	defer t.RemoveWatcher(ch)

	replies := make(chan []byte, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg dispatch.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if err := h.apply(r.Context(), t, msg); err != nil {
				data, _ := json.Marshal(dispatch.Frame{Type: dispatch.FrameError, Ref: msg.Ref, Error: err.Error()})
				select {
				case replies <- data:
				default:
				}
			}
		}
	}()

	t.Mu.Lock()
	initial := t.FrameLocked()
	t.Mu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		return
	}
	t.Touch()

	for {
		var data []byte
		select {
		case <-done:
			return
		case data = <-ch:
		case data = <-replies:
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// HandleDropped applies a dropped message posted over HTTP
func (h *Handler) HandleDropped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/dropped/")
	t := h.Hub.Get(id)

	var msg dispatch.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	if err := h.apply(r.Context(), t, msg); err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error(), "ref": msg.Ref})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "ref": msg.Ref})
}

// HandleFlag raises or lowers a session flag on a zone
func (h *Handler) HandleFlag(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/flag/")
	t := h.Hub.Get(id)

	var req table.FlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	if err := t.SetFlag(req); err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	t.Touch()
	go t.Broadcast()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleReset redeals a table
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/reset/")
	t := h.Hub.Get(id)

	t.Reset()
	if tid, ok := storageID(id); ok {
		if err := h.Store.ResetTable(r.Context(), tid); err != nil {
			logging.Warnf("reset table %s: %v", id, err)
		}
	}

	go t.Broadcast()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

var errUnsupported = errors.New("unsupported message")

func (h *Handler) apply(ctx context.Context, t *table.Table, msg dispatch.Message) error {
	if msg.Type != move.EventName {
		return fmt.Errorf("%w: %q", errUnsupported, msg.Type)
	}
	n, err := t.ApplyDrop(msg.Payload)
	if err != nil {
		logging.Debugf("table %s rejected %s: %v", t.ID, msg.Ref, err)
		return err
	}
	if tid, ok := storageID(t.ID); ok {
		if err := h.Store.RecordDrop(ctx, tid, n, msg.Ref, msg.Payload); err != nil {
			logging.Warnf("record drop %s on %s: %v", msg.Ref, t.ID, err)
		}
	}
	t.Touch()
	go t.Broadcast()
	return nil
}

// restoreTable runs under the table lock when the hub deals a table. A
// table already in the move log is brought back to its last position.
func (h *Handler) restoreTable(t *table.Table) {
	tid, ok := storageID(t.ID)
	if !ok {
		return
	}
	ctx := context.Background()
	if err := h.Store.CreateTable(ctx, tid, t.Seats, t.LastSeen); err != nil {
		logging.Warnf("create table %s: %v", t.ID, err)
		return
	}
	log, err := h.Store.LoadMoves(ctx, tid)
	if err != nil {
		logging.Warnf("load moves for %s: %v", t.ID, err)
		return
	}
	if len(log) == 0 {
		return
	}
	n, err := t.ReplayLocked(log)
	if err != nil {
		logging.Warnf("table %s replay stopped after %d of %d moves: %v", t.ID, n, len(log), err)
		return
	}
	logging.Infof("table %s restored %d moves", t.ID, n)
}

func (h *Handler) touchTable(id string, at time.Time) {
	tid, ok := storageID(id)
	if !ok {
		return
	}
	if err := h.Store.UpdateLastSeen(context.Background(), tid, at); err != nil {
		logging.Warnf("update last seen for %s: %v", id, err)
	}
}

// storageID maps a table id to its row key; only uuid ids are persisted.
func storageID(id string) (uuid.UUID, bool) {
	u, err := uuid.Parse(id)
	return u, err == nil
}
