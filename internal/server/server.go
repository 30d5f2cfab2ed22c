package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
	"github.com/muurk/appinstall/internal/operation"
)

// DefaultPath is the widget endpoint
const DefaultPath = "/widget"

// shutdownTimeout bounds Shutdown when the caller's context has no deadline
const shutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host string
	Port int
	Path string // Widget endpoint (default DefaultPath)

	// App is shown by every widget before its manifest is loaded (optional)
	App *manifest.Manifest

	// Operations builds the flow operations for one widget around its poster
	Operations func(post operation.Poster) flow.Operations

	Gate             flow.Gate
	OperationTimeout time.Duration

	// Navigator wraps the client's navigate message, e.g. to record launches
	// (optional)
	Navigator func(client flow.Navigator) flow.Navigator

	// AllowedOrigins restricts the Origin header of upgrade requests.
	// Empty allows any origin.
	AllowedOrigins []string
}

// Server hosts install widgets over WebSocket
type Server struct {
	config     *Config
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener

	ctx    context.Context
	cancel context.CancelFunc

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, errors.New("server config is required")
	}
	if config.Operations == nil {
		return nil, errors.New("server config has no operations")
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:      config,
		ctx:         ctx,
		cancel:      cancel,
		activeConns: make(map[string]*websocket.Conn),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler serving the widget endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleWidget)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintf(w, "ok %d\n", s.GetActiveConnections())
	})
	return mux
}

// Start listens on the configured address and blocks until a shutdown
// signal arrives or the server fails
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logging.Info("Starting widget server",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.config.Path),
	)

	// Set up signal handling for graceful shutdown
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
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on l until Shutdown
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	err := s.httpServer.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the listening address, or "" before Serve
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	logging.LogConnection(remoteAddr, "widget_attached")
	newSession(conn, remoteAddr).serve(s.ctx, s.config)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	logging.Warn("Rejected widget origin",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("origin", origin),
	)
	return false
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	// Stop accepting new connections; hijacked websockets are not tracked
	// by http.Server
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Error("Error stopping HTTP server", zap.Error(err))
	}
	s.cancel()

	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
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
	return nil
}

// GetActiveConnections returns the number of attached widgets
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
