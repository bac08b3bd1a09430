package sink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/ledbadge/internal/protocol"
)

// fakeBridge serves the JSON bridge protocol, answering each request with
// respond. Requests are forwarded to the returned channel.
func fakeBridge(t *testing.T, respond func(req protocol.BridgeRequest) protocol.BridgeAck) (*httptest.Server, <-chan protocol.BridgeRequest) {
	t.Helper()
	got := make(chan protocol.BridgeRequest, 8)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get("Authorization"); token == "Bearer wrong" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req protocol.BridgeRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			got <- req
			if err := conn.WriteJSON(respond(req)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketWrite(t *testing.T) {
	srv, got := fakeBridge(t, func(req protocol.BridgeRequest) protocol.BridgeAck {
		return protocol.BridgeAck{ID: req.ID, OK: true, Message: "displayed"}
	})

	ws, err := DialWebSocket(context.Background(), wsURL(srv), WebSocketOptions{})
	if err != nil {
		t.Fatalf("DialWebSocket() error = %v", err)
	}
	defer ws.Close()

	res, err := ws.Write(context.Background(), mustCommand(t, "HELLO", 4, "left", "flashing"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if res.Status != "displayed" || res.Messages != 1 {
		t.Errorf("ack = %+v", res)
	}

	req := <-got
	if len(req.Messages) != 1 {
		t.Fatalf("bridge got %d messages, want 1", len(req.Messages))
	}
	m := req.Messages[0]
	if m.Text != "HELLO" || m.Speed != 4 || m.Mode != "left" || len(m.Effects) != 1 || m.Effects[0] != "flashing" {
		t.Errorf("message = %+v", m)
	}

	// The connection is reused for later writes
	if _, err := ws.Write(context.Background(), mustCommand(t, "AGAIN", 1, "right")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
}

func TestWebSocketRejected(t *testing.T) {
	srv, _ := fakeBridge(t, func(req protocol.BridgeRequest) protocol.BridgeAck {
		return protocol.BridgeAck{ID: req.ID, Error: "text too long: 300 characters (max 255)", Kind: "TextTooLong"}
	})

	ws := NewWebSocket(wsURL(srv), WebSocketOptions{})
	defer ws.Close()

	_, err := ws.Write(context.Background(), mustCommand(t, "X", 0, "left"))
	var sinkErr *Error
	if !errors.As(err, &sinkErr) || sinkErr.Type != ErrTypeRejected {
		t.Fatalf("Write() error = %v, want rejected *Error", err)
	}
	if sinkErr.Status != "TextTooLong" {
		t.Errorf("Status = %q", sinkErr.Status)
	}
}

func TestWebSocketAckMismatch(t *testing.T) {
	srv, _ := fakeBridge(t, func(req protocol.BridgeRequest) protocol.BridgeAck {
		return protocol.BridgeAck{ID: req.ID + 1, OK: true}
	})

	ws := NewWebSocket(wsURL(srv), WebSocketOptions{})
	defer ws.Close()

	_, err := ws.Write(context.Background(), mustCommand(t, "X", 0, "left"))
	var sinkErr *Error
	if !errors.As(err, &sinkErr) || sinkErr.Type != ErrTypeProtocol {
		t.Fatalf("Write() error = %v, want protocol *Error", err)
	}
}

func TestWebSocketContextDeadline(t *testing.T) {
	srv, _ := fakeBridge(t, func(req protocol.BridgeRequest) protocol.BridgeAck {
		time.Sleep(200 * time.Millisecond)
		return protocol.BridgeAck{ID: req.ID, OK: true}
	})

	ws := NewWebSocket(wsURL(srv), WebSocketOptions{})
	defer ws.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ws.Write(ctx, mustCommand(t, "SLOW", 0, "left"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Write() error = %v, want DeadlineExceeded", err)
	}
}

func TestWebSocketUpgradeRefused(t *testing.T) {
	srv, _ := fakeBridge(t, func(req protocol.BridgeRequest) protocol.BridgeAck {
		return protocol.BridgeAck{ID: req.ID, OK: true}
	})

	_, err := DialWebSocket(context.Background(), wsURL(srv), WebSocketOptions{AuthToken: "wrong"})
	var sinkErr *Error
	if !errors.As(err, &sinkErr) || sinkErr.Type != ErrTypeRejected {
		t.Fatalf("DialWebSocket() error = %v, want rejected *Error", err)
	}
	if !strings.Contains(sinkErr.Status, "401") {
		t.Errorf("Status = %q, want 401", sinkErr.Status)
	}
}

func TestWebSocketConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	_, err := DialWebSocket(context.Background(), url, WebSocketOptions{Timeout: time.Second})
	if !IsNetworkError(err) {
		t.Fatalf("DialWebSocket() error = %v, want network error", err)
	}
}
