// Package server wires the datastore runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/louisbranch/cardclash/internal/platform/config"
	platformgrpc "github.com/louisbranch/cardclash/internal/platform/grpc"
	"github.com/louisbranch/cardclash/internal/platform/logging"
	datastoreservice "github.com/louisbranch/cardclash/internal/services/datastore/api/grpc/datastore"
	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
	datastoresqlite "github.com/louisbranch/cardclash/internal/services/datastore/storage/sqlite"
)

type serverEnv struct {
	DBPath string `env:"CARDCLASH_DATASTORE_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "datastore.db")
	}
	return cfg
}

// Option customizes a Server.
type Option func(*options)

type options struct {
	logger *zap.Logger
	auth   *auth.Config
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAuthConfig overrides the session verification config read from env.
func WithAuthConfig(cfg auth.Config) Option {
	return func(o *options) { o.auth = &cfg }
}

// Server hosts the datastore gRPC API and storage lifecycle.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *datastoresqlite.Store
	logger     *zap.Logger
}

// New creates a configured datastore server listening on the provided port.
func New(port int, opts ...Option) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port), opts...)
}

// NewWithAddr creates a configured datastore server for the provided address.
func NewWithAddr(addr string, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.OrNop(o.logger)

	authCfg, err := resolveAuthConfig(o.auth)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := datastoresqlite.Open(context.Background(), env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("open datastore sqlite store: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(auth.UnaryServerInterceptor(authCfg, logger)),
	)
	datastoreservice.RegisterDatastoreServer(grpcServer, datastoreservice.NewService(store, logger))
	healthServer := platformgrpc.RegisterHealth(grpcServer, datastoreservice.ServiceName)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		logger:     logger,
	}, nil
}

func resolveAuthConfig(override *auth.Config) (auth.Config, error) {
	if override != nil {
		cfg := *override
		if cfg.Now == nil {
			cfg.Now = time.Now
		}
		return cfg, nil
	}
	cfg, err := auth.LoadConfigFromEnv(time.Now)
	if err != nil {
		return auth.Config{}, fmt.Errorf("load session config: %w", err)
	}
	return cfg, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a datastore server until context cancellation.
func Run(ctx context.Context, port int, opts ...Option) error {
	server, err := New(port, opts...)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	s.logger.Info("datastore server listening", zap.String("addr", s.Addr()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close releases datastore server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close datastore store", zap.Error(err))
		}
		s.store = nil
	}
}
