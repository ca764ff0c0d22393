package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tinymahjong/internal/dispatch"
	"tinymahjong/internal/move"
	"tinymahjong/internal/table"
)

func moveTile(id string) move.Event {
	return move.Event{DraggedID: id, FromID: "concealed-0", ToID: "exposed-0", ToList: []string{id}}
}

func TestHandleWSRoundTrip(t *testing.T) {
	hub := table.NewHub(1)
	h := NewHandler(hub, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", h.HandleWS)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ch, err := dispatch.DialWS(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/t6")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	f, err := ch.Next()
	if err != nil || f.Type != dispatch.FrameRender {
		t.Fatalf("expected initial render, got %+v %v", f, err)
	}

	if err := ch.Send(ctx, dispatch.Message{Type: move.EventName, Ref: "bad", Payload: moveTile("ghost")}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f, err = ch.Next()
	if err != nil || f.Type != dispatch.FrameError || f.Ref != "bad" {
		t.Fatalf("expected error frame, got %+v %v", f, err)
	}

	if err := ch.Send(ctx, dispatch.Message{Type: move.EventName, Ref: "good", Payload: moveTile("t0-02")}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f, err = ch.Next()
	if err != nil || f.Type != dispatch.FrameRender {
		t.Fatalf("expected re-render, got %+v %v", f, err)
	}
	if !strings.Contains(f.Markup, `<div id="exposed-0" class="dropzone uninitialized" data-target="seat-0"><div id="t0-02"`) {
		t.Fatalf("re-render missing moved tile: %s", f.Markup)
	}
}
