// Package remote implements the community client stores over the datastore
// gRPC API.
package remote

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	platformgrpc "github.com/louisbranch/cardclash/internal/platform/grpc"
	"github.com/louisbranch/cardclash/internal/platform/logging"
	"github.com/louisbranch/cardclash/internal/platform/timeouts"
	"github.com/louisbranch/cardclash/internal/services/community/client"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"github.com/louisbranch/cardclash/internal/services/datastore/api/grpc/datastore"
	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
)

// Store reads and writes community collections through a datastore client.
type Store struct {
	client        *datastore.Client
	callTimeout   time.Duration
	locale        string
	allowInsecure bool
	logger        *zap.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithCallTimeout bounds each remote call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Store) { s.callTimeout = d }
}

// WithLocale asks the datastore for error messages in locale.
func WithLocale(locale string) Option {
	return func(s *Store) { s.locale = strings.TrimSpace(locale) }
}

// WithInsecureCredentials allows session tokens over plaintext connections.
func WithInsecureCredentials() Option {
	return func(s *Store) { s.allowInsecure = true }
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over conn.
func New(conn grpc.ClientConnInterface, opts ...Option) *Store {
	s := &Store{
		client:      datastore.NewClient(conn),
		callTimeout: timeouts.RemoteCall,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Dial connects to the datastore at addr and waits for it to report healthy.
func Dial(ctx context.Context, addr string, logger *zap.Logger, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := append(platformgrpc.DefaultClientDialOptions(), opts...)
	return platformgrpc.DialWithHealth(ctx, nil, addr, datastore.ServiceName, timeouts.GRPCDial,
		logging.Printf(logger), dialOpts...)
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.locale != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, auth.LocaleHeader, s.locale)
	}
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Store) credentials(session domain.Session) []grpc.CallOption {
	token := strings.TrimSpace(session.AccessToken)
	if token == "" {
		return nil
	}
	return []grpc.CallOption{grpc.PerRPCCredentials(platformgrpc.BearerToken{
		Token:         token,
		AllowInsecure: s.allowInsecure,
	})}
}

func (s *Store) selectRows(ctx context.Context, req datastore.SelectRequest, opts ...grpc.CallOption) ([]datastore.Row, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	rows, err := s.client.Select(ctx, req, opts...)
	if err != nil {
		return nil, s.remoteError("select "+req.Collection, err)
	}
	return rows, nil
}

// remoteError rebuilds the domain error carried by a datastore status so
// callers can branch on its code.
func (s *Store) remoteError(op string, err error) error {
	appErr := apperrors.FromGRPC(err)
	s.logger.Debug("datastore call failed", zap.String("op", op), zap.String("code", string(appErr.Code)), zap.Error(err))
	return appErr
}

var (
	_ client.EventStore      = (*Store)(nil)
	_ client.NewsStore       = (*Store)(nil)
	_ client.CommunitySource = (*Store)(nil)
	_ client.GrantStore      = (*Store)(nil)
)
