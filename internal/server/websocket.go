package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/protocol"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message or pong from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = maxBodyBytes
)

// handleBridge upgrades to a WebSocket and serves BridgeRequests until the
// peer goes away. Requests on one connection are handled in order.
func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.activeConns[conn] = remoteAddr
	s.mu.Unlock()
	s.wg.Add(1)

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, conn)
		s.mu.Unlock()
		s.wg.Done()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	logging.LogConnection(remoteAddr, "websocket_upgraded")
	if subject := SubjectFrom(r.Context()); subject != "" {
		logging.Info("Bridge client authenticated",
			zap.String("remote_addr", remoteAddr),
			zap.String("subject", subject),
		)
	}

	// The request context ends once the handler returns, so bridge
	// dispatches get their own context tied to the connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.serveBridge(ctx, conn, remoteAddr); err != nil {
		logging.Info("Bridge connection ended",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
	}
}

func (s *Server) serveBridge(ctx context.Context, conn *websocket.Conn, remoteAddr string) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Writes from the ping loop and the request loop must not interleave
	writes := make(chan struct{}, 1)
	writes <- struct{}{}
	write := func(fn func() error) error {
		<-writes
		defer func() { writes <- struct{}{} }()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return fn()
	}

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := write(func() error {
					return conn.WriteMessage(websocket.PingMessage, nil)
				}); err != nil {
					return
				}
			case <-stopPing:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		logging.LogWebSocketMessage(remoteAddr, "recv", messageType, data)

		ack := s.handleBridgeRequest(ctx, data)

		if err := write(func() error { return conn.WriteJSON(ack) }); err != nil {
			return err
		}
	}
}

// handleBridgeRequest decodes one request and runs it through the service.
// Every failure becomes a negative ack; the connection stays open.
func (s *Server) handleBridgeRequest(ctx context.Context, data []byte) protocol.BridgeAck {
	var req protocol.BridgeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return protocol.BridgeAck{OK: false, Error: "invalid request: " + err.Error(), Kind: "BAD_REQUEST"}
	}

	var (
		ack string
		err error
	)
	switch reqs := req.Requests(); len(reqs) {
	case 0:
		return protocol.BridgeAck{ID: req.ID, Error: "request carries no messages", Kind: "EmptyProgram"}
	case 1:
		ack, err = s.service.Submit(ctx, reqs[0])
	default:
		ack, err = s.service.SetMessages(ctx, reqs)
	}

	if err != nil {
		_, code := StatusFor(err)
		return protocol.BridgeAck{ID: req.ID, Error: err.Error(), Kind: code}
	}
	return protocol.BridgeAck{ID: req.ID, OK: true, Message: ack}
}
