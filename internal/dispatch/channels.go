package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSChannel sends messages over a websocket connection to /ws/{table}.
// Writes are serialized; one other goroutine may read frames with Next.
type WSChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSChannel wraps an established connection.
func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn}
}

// DialWS connects to wsURL, retrying while the authority comes up.
func DialWS(ctx context.Context, wsURL string) (*WSChannel, error) {
	conn, err := dialWithRetry(ctx, wsURL)
	if err != nil {
		return nil, err
	}
	return NewWSChannel(conn), nil
}

func dialWithRetry(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	if !strings.HasPrefix(wsURL, "ws://") && !strings.HasPrefix(wsURL, "wss://") {
		return nil, fmt.Errorf("invalid ws url: %s", wsURL)
	}
	var lastErr error
	for attempt := 0; attempt < 12; attempt++ {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(180 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// Send writes msg as one JSON text frame.
func (c *WSChannel) Send(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("ws write: %w", err)
	}
	return nil
}

// Next blocks for the next frame from the authority.
func (c *WSChannel) Next() (Frame, error) {
	var f Frame
	if err := c.conn.ReadJSON(&f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Close sends a close frame and closes the connection.
func (c *WSChannel) Close() error {
	c.mu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}

// HTTPChannel posts messages to {base}/dropped/{table}.
type HTTPChannel struct {
	URL    string
	Client *http.Client
}

// NewHTTPChannel targets the dropped endpoint of one table.
func NewHTTPChannel(base, tableID string) *HTTPChannel {
	return &HTTPChannel{
		URL:    strings.TrimRight(base, "/") + "/dropped/" + tableID,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts msg and fails on a non-2xx answer or {"ok":false}.
func (c *HTTPChannel) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", c.URL, err)
	}
	defer resp.Body.Close()

	var out struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post %s: %s: %s", c.URL, resp.Status, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, &out); err == nil && !out.OK {
		return fmt.Errorf("post %s: rejected: %s", c.URL, out.Error)
	}
	return nil
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

// Send records msg and returns r.Err.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.Err
}

// Messages returns a copy of what was sent.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}
