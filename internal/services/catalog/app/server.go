// Package server wires the catalog HTTP runtime and its storage backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/louisbranch/cardclash/internal/platform/logging"
	"github.com/louisbranch/cardclash/internal/platform/timeouts"
	catalogapi "github.com/louisbranch/cardclash/internal/services/catalog/api/http"
	"github.com/louisbranch/cardclash/internal/services/catalog/storage"
	catalogpostgres "github.com/louisbranch/cardclash/internal/services/catalog/storage/postgres"
	catalogsqlite "github.com/louisbranch/cardclash/internal/services/catalog/storage/sqlite"
)

const defaultMaxConns = 256

// Config defines the inputs for the catalog HTTP process.
type Config struct {
	HTTPAddr string
	// DatabaseURL selects the Postgres backend when set.
	DatabaseURL string
	// DBPath is the SQLite file used when DatabaseURL is empty.
	DBPath            string
	MaxConns          int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	Logger            *zap.Logger
}

// Server hosts the catalog endpoints.
type Server struct {
	listener        net.Listener
	httpServer      *http.Server
	store           storage.Store
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// OpenStore opens the Postgres store when databaseURL is set, otherwise the
// SQLite file at dbPath.
func OpenStore(ctx context.Context, databaseURL, dbPath string) (storage.Store, error) {
	if url := strings.TrimSpace(databaseURL); url != "" {
		store, err := catalogpostgres.Open(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("open catalog postgres store: %w", err)
		}
		return store, nil
	}
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "catalog.db")
	}
	store, err := catalogsqlite.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog sqlite store: %w", err)
	}
	return store, nil
}

// New opens storage and binds the listener.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = defaultMaxConns
	}
	logger := logging.OrNop(cfg.Logger)

	store, err := OpenStore(ctx, cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return &Server{
		listener: netutil.LimitListener(listener, cfg.MaxConns),
		httpServer: &http.Server{
			Handler:           catalogapi.NewRouter(store, logger),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		store:           store,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// Run creates and serves a catalog server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init catalog server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("serve catalog: %w", err)
	}
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs the HTTP server until the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("catalog server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.Info("catalog server listening", zap.String("addr", s.Addr()))
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the listener and the store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close catalog store", zap.Error(err))
		}
		s.store = nil
	}
}
