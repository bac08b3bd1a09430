package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/discovery"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/logging"
	"go.uber.org/zap"
)

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // TLS is enabled when both CertPath and KeyPath are set
	KeyPath  string

	// AuthSecret enables HS256 bearer-token auth on every route but /healthz
	AuthSecret string

	// Advertise registers the bridge over mDNS under Instance
	Advertise bool
	Instance  string
}

// Server exposes a badge.Service over HTTP and WebSocket
type Server struct {
	config    *Config
	service   *badge.Service
	tlsConfig *tls.Config
	verifier  *Verifier
	upgrader  websocket.Upgrader

	httpServer *http.Server
	advert     *discovery.Advertisement

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[*websocket.Conn]string
}

// New creates a new Server instance
func New(config *Config, service *badge.Service) (*Server, error) {
	if service == nil {
		return nil, errors.New("server requires a badge service")
	}

	s := &Server{
		config:      config,
		service:     service,
		activeConns: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	if config.CertPath != "" || config.KeyPath != "" {
		tlsConfig, err := NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		s.tlsConfig = tlsConfig
	}

	if config.AuthSecret != "" {
		verifier, err := NewVerifier(config.AuthSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create token verifier: %w", err)
		}
		s.verifier = verifier
	}

	return s, nil
}

// Handler returns the HTTP handler with every route and middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/modes", s.handleModes)
	mux.HandleFunc("POST /api/set_text", s.handleSetText)
	mux.HandleFunc("POST /api/set_messages", s.handleSetMessages)
	mux.HandleFunc("GET "+discovery.DefaultBridgePath, s.handleBridge)

	var h http.Handler = mux
	if s.verifier != nil {
		h = s.verifier.RequireAuth(h)
	}
	return logRequests(h)
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	var (
		listener net.Listener
		err      error
	)
	if s.tlsConfig != nil {
		logging.Info("TLS Configuration", zap.Any("tls_info", GetTLSInfo(s.tlsConfig)))
		listener, err = tls.Listen("tcp", addr, s.tlsConfig)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logging.Info("Starting ledbadge server",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.tlsConfig != nil),
		zap.Bool("auth", s.verifier != nil),
	)

	if s.config.Advertise {
		if err := s.advertise(listener.Addr()); err != nil {
			// The server still works without mDNS, clients just need the address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on l until Shutdown is called
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.advert.Shutdown()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	// Hijacked WebSocket connections are not tracked by http.Server
	s.mu.Lock()
	for conn, addr := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return err
}

// GetActiveConnections returns the number of open bridge connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

func (s *Server) advertise(addr net.Addr) error {
	port := s.config.Port
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}

	instance := s.config.Instance
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "ledbadge"
		}
		instance = host
	}

	advert, err := discovery.Advertise(instance, port, s.txtRecords())
	if err != nil {
		return err
	}
	s.advert = advert
	return nil
}

// txtRecords describes this bridge the way discovery.Device reads it back
func (s *Server) txtRecords() map[string]string {
	v := s.service.Validator()
	txt := map[string]string{"path": discovery.DefaultBridgePath}
	if v.MaxTextLength > 0 {
		txt["max_text"] = strconv.Itoa(v.MaxTextLength)
	}
	switch v.Charset {
	case display.Latin1:
		txt["charset"] = "latin1"
	case display.ASCII:
		txt["charset"] = "ascii"
	}
	if s.verifier != nil {
		txt["auth"] = "bearer"
	}
	return txt
}
