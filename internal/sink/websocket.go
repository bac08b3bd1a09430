package sink

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/protocol"
)

// DefaultWebSocketTimeout bounds a request/ack exchange when ctx has no deadline.
const DefaultWebSocketTimeout = 5 * time.Second

// WebSocketOptions configures a WebSocket sink.
type WebSocketOptions struct {
	Limits    Limits
	AuthToken string        // Sent as a bearer token when set
	Timeout   time.Duration // Exchange timeout when ctx has no deadline
	Dialer    *websocket.Dialer
}

// WebSocket sends programs as JSON to a network display bridge, such as
// another ledbadge server's /bridge endpoint. The connection is opened
// lazily and re-opened after any failed exchange.
type WebSocket struct {
	url  string
	opts WebSocketOptions

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWebSocket creates a WebSocket sink for url without connecting.
func NewWebSocket(url string, opts WebSocketOptions) *WebSocket {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWebSocketTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &WebSocket{url: url, opts: opts}
}

// DialWebSocket creates a WebSocket sink and connects immediately, so a
// bad address is reported before the first write.
func DialWebSocket(ctx context.Context, url string, opts WebSocketOptions) (*WebSocket, error) {
	ws := NewWebSocket(url, opts)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.connect(ctx); err != nil {
		return nil, err
	}
	return ws, nil
}

// Write sends cmd as a one-message program.
func (w *WebSocket) Write(ctx context.Context, cmd display.Command) (Ack, error) {
	return w.WriteProgram(ctx, display.ProgramOf(cmd))
}

// WriteProgram sends prog and waits for the bridge's ack.
func (w *WebSocket) WriteProgram(ctx context.Context, prog display.Program) (Ack, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return Ack{}, ErrClosed
	}
	if err := w.connect(ctx); err != nil {
		return Ack{}, err
	}

	deadline, fromCtx := ctx.Deadline()
	if !fromCtx {
		deadline = time.Now().Add(w.opts.Timeout)
	}

	req := protocol.NewBridgeRequest(protocol.GenerateMessageID(), prog)

	_ = w.conn.SetWriteDeadline(deadline)
	if err := w.conn.WriteJSON(req); err != nil {
		w.drop()
		return Ack{}, NewNetworkError(w.url, "failed to send request", err)
	}

	// Unblock the read if ctx is cancelled before the deadline
	conn := w.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var ack protocol.BridgeAck
	_ = conn.SetReadDeadline(deadline)
	if err := conn.ReadJSON(&ack); err != nil {
		w.drop()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Ack{}, ctxErr
		}
		if fromCtx && !time.Now().Before(deadline) {
			return Ack{}, context.DeadlineExceeded
		}
		return Ack{}, NewNetworkError(w.url, "no ack from bridge", err)
	}

	if ack.ID != req.ID {
		w.drop()
		return Ack{}, NewProtocolError(w.url, fmt.Sprintf("ack id %d does not match request %d", ack.ID, req.ID), nil)
	}
	if !ack.OK {
		return Ack{}, NewRejectedError(w.url, ack.Kind, ack.Error)
	}

	return Ack{
		Device:   w.url,
		Status:   ack.Message,
		Messages: prog.Len(),
		At:       time.Now(),
	}, nil
}

// Limits returns the limits declared for the bridge.
func (w *WebSocket) Limits() Limits { return w.opts.Limits }

// Close sends a close frame and closes the connection.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}

// connect dials if there is no live connection. Callers hold w.mu.
func (w *WebSocket) connect(ctx context.Context) error {
	if w.conn != nil {
		return nil
	}

	header := http.Header{}
	if w.opts.AuthToken != "" {
		header.Set("Authorization", "Bearer "+w.opts.AuthToken)
	}

	dialCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	conn, resp, err := w.opts.Dialer.DialContext(dialCtx, w.url, header)
	if err != nil {
		if resp != nil {
			return &Error{
				Type:    ErrTypeRejected,
				Message: fmt.Sprintf("bridge refused upgrade: %s", resp.Status),
				Device:  w.url,
				Status:  resp.Status,
				Err:     err,
			}
		}
		return NewNetworkError(w.url, "failed to connect to bridge", err)
	}

	logging.Info("Connected to display bridge", zap.String("url", w.url))
	w.conn = conn
	return nil
}

// drop discards a connection after a failed exchange. Callers hold w.mu.
func (w *WebSocket) drop() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}
