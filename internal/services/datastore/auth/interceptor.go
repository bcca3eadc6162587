package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	platformgrpc "github.com/louisbranch/cardclash/internal/platform/grpc"
	"github.com/louisbranch/cardclash/internal/platform/requestctx"
)

// LocaleHeader is the metadata key clients use to pick the error language.
const LocaleHeader = "x-locale"

// UnaryServerInterceptor resolves the caller from the bearer session token.
// Requests without an authorization header continue anonymously; a header
// that does not verify is rejected with Unauthenticated.
func UnaryServerInterceptor(cfg Config, logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get(platformgrpc.AuthorizationHeader)
		if len(values) == 0 {
			return handler(ctx, req)
		}
		claims, err := verifyHeader(values[0], cfg)
		if err != nil {
			logger.Debug("reject session", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, apperrors.HandleError(err, LocaleFromContext(ctx))
		}
		return handler(requestctx.WithCaller(ctx, claims.Caller()), req)
	}
}

func verifyHeader(value string, cfg Config) (Claims, error) {
	token, ok := platformgrpc.ParseBearer(value)
	if !ok {
		return Claims{}, apperrors.New(apperrors.CodeSessionTokenInvalid, "authorization must be a bearer token")
	}
	return Verify(token, cfg)
}

// LocaleFromContext returns the locale requested through incoming metadata,
// or the default locale.
func LocaleFromContext(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if values := md.Get(LocaleHeader); len(values) > 0 {
		if locale := strings.TrimSpace(values[0]); locale != "" {
			return locale
		}
	}
	return apperrors.DefaultLocale
}
