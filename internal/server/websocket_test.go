package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/protocol"
	"github.com/muurk/ledbadge/internal/sink"
)

func bridgeURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/bridge"
}

func dialBridge(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(bridgeURL(ts), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, msg interface{}) protocol.BridgeAck {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var err error
	if raw, ok := msg.(string); ok {
		err = conn.WriteMessage(websocket.TextMessage, []byte(raw))
	} else {
		err = conn.WriteJSON(msg)
	}
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	var ack protocol.BridgeAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	return ack
}

func TestBridgeRequests(t *testing.T) {
	m := sink.NewMemory("desk")
	ts := newTestServer(t, m, badge.Options{}, nil)
	conn := dialBridge(t, ts)

	tests := []struct {
		name     string
		msg      interface{}
		wantID   uint32
		wantOK   bool
		wantKind string
	}{
		{
			name: "single message",
			msg: protocol.BridgeRequest{ID: 7, Messages: []protocol.BridgeMessage{
				{Text: "HELLO", Speed: 4, Mode: "left"},
			}},
			wantID: 7, wantOK: true,
		},
		{
			name: "program",
			msg: protocol.BridgeRequest{ID: 8, Messages: []protocol.BridgeMessage{
				{Text: "ONE", Speed: 1, Mode: "up"},
				{Text: "TWO", Speed: 2, Mode: "down", Effects: []string{"border"}},
			}},
			wantID: 8, wantOK: true,
		},
		{
			name: "invalid speed",
			msg: protocol.BridgeRequest{ID: 9, Messages: []protocol.BridgeMessage{
				{Text: "FAST", Speed: 9, Mode: "left"},
			}},
			wantID: 9, wantKind: "SpeedOutOfRange",
		},
		{
			name:   "no messages",
			msg:    protocol.BridgeRequest{ID: 10},
			wantID: 10, wantKind: "EmptyProgram",
		},
		{
			name:     "malformed json",
			msg:      "{not json",
			wantKind: "BAD_REQUEST",
		},
	}

	// One connection serves every request in turn
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := exchange(t, conn, tt.msg)
			if ack.ID != tt.wantID || ack.OK != tt.wantOK || ack.Kind != tt.wantKind {
				t.Errorf("ack = %+v, want id %d ok %v kind %q", ack, tt.wantID, tt.wantOK, tt.wantKind)
			}
			if ack.OK && ack.Message == "" {
				t.Error("positive ack without message")
			}
			if !ack.OK && ack.Error == "" {
				t.Error("negative ack without error")
			}
		})
	}

	if got := m.Writes(); got != 2 {
		t.Errorf("sink saw %d writes, want 2", got)
	}
}

func TestBridgeRequiresToken(t *testing.T) {
	ts := newTestServer(t, sink.NewMemory("desk"), badge.Options{}, &Config{AuthSecret: testSecret})

	_, resp, err := websocket.DefaultDialer.Dial(bridgeURL(ts), nil)
	if err == nil {
		t.Fatal("Dial() without token should fail")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("response = %v, want 401", resp)
	}
}

// A WebSocket sink on one machine drives the display behind another
// machine's server.
func TestWebSocketSinkThroughBridge(t *testing.T) {
	m := sink.NewMemory("shopfront")
	ts := newTestServer(t, m, badge.Options{}, &Config{AuthSecret: testSecret})

	token, err := IssueToken(testSecret, "remote", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ws := sink.NewWebSocket(bridgeURL(ts), sink.WebSocketOptions{AuthToken: token})
	t.Cleanup(func() { ws.Close() })

	remote := badge.NewService(ws, badge.Options{})
	ctx := context.Background()

	if _, err := remote.SetText(ctx, "HELLO", 4, "center"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	if _, err := remote.SetMessages(ctx, []display.Request{
		display.NewRequest("A", 1, "up"),
		display.NewRequest("B", 2, "down"),
	}); err != nil {
		t.Fatalf("SetMessages() error = %v", err)
	}

	cmds := m.Commands()
	if len(cmds) != 3 {
		t.Fatalf("bridge display received %d messages, want 3", len(cmds))
	}
	if cmds[0].Text() != "HELLO" || cmds[0].Mode() != display.ModeCenter {
		t.Errorf("first message = %v", cmds[0])
	}
}

// The bridge's own limits apply even when the remote side is unbounded.
func TestWebSocketSinkRejectedByBridge(t *testing.T) {
	m := sink.NewMemory("shopfront")
	m.Limit = sink.Limits{MaxTextLength: 3}
	ts := newTestServer(t, m, badge.Options{}, nil)

	ws := sink.NewWebSocket(bridgeURL(ts), sink.WebSocketOptions{})
	t.Cleanup(func() { ws.Close() })

	_, err := badge.NewService(ws, badge.Options{}).SetText(context.Background(), "TOO LONG", 1, "left")
	if !sink.IsRejected(err) {
		t.Fatalf("SetText() error = %v, want rejected", err)
	}
	if m.Writes() != 0 {
		t.Errorf("bridge display saw %d writes", m.Writes())
	}
}

func TestShutdownClosesBridgeConnections(t *testing.T) {
	srv, err := New(&Config{}, badge.NewService(sink.NewMemory("desk"), badge.Options{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	conn := dialBridge(t, ts)
	exchange(t, conn, protocol.BridgeRequest{ID: 1, Messages: []protocol.BridgeMessage{
		{Text: "HI", Speed: 1, Mode: "left"},
	}})
	if got := srv.GetActiveConnections(); got != 1 {
		t.Fatalf("GetActiveConnections() = %d, want 1", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if got := srv.GetActiveConnections(); got != 0 {
		t.Errorf("GetActiveConnections() after Shutdown = %d, want 0", got)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection should be closed by the server")
	}
}
