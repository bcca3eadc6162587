package cardclash

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/louisbranch/cardclash/internal/services/community/client"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"github.com/louisbranch/cardclash/internal/services/community/source/github"
	"github.com/louisbranch/cardclash/internal/services/community/source/remote"
	"github.com/louisbranch/cardclash/internal/services/community/source/static"
)

// Runtime is what a command works against: a client, the caller session and
// the resources to release afterwards.
type Runtime struct {
	Client  *client.Client
	Session domain.Session
	closers []func() error
}

// NewRuntime wraps an already built client.
func NewRuntime(c *client.Client, session domain.Session, closers ...func() error) *Runtime {
	return &Runtime{Client: c, Session: session, closers: closers}
}

// Close tears down the client and its connections.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.Client != nil {
		r.Client.Close()
	}
	var errs []error
	for _, closeFn := range r.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// OpenFunc builds the runtime for a profile.
type OpenFunc func(ctx context.Context, profile Profile, logger *zap.Logger) (*Runtime, error)

// Open dials the datastore and selects the community source named by the
// profile.
func Open(ctx context.Context, profile Profile, logger *zap.Logger) (*Runtime, error) {
	conn, err := remote.Dial(ctx, profile.DatastoreAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("dial datastore %s: %w", profile.DatastoreAddr, err)
	}
	opts := []remote.Option{remote.WithLocale(profile.Locale), remote.WithLogger(logger)}
	if profile.Insecure {
		opts = append(opts, remote.WithInsecureCredentials())
	}
	store := remote.New(conn, opts...)

	community, err := communitySource(ctx, profile, store, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := client.New(store, store, community, store,
		client.WithLogger(logger),
		client.WithLocale(profile.Locale),
	)
	return NewRuntime(c, sessionFromProfile(profile), closeConn(conn)), nil
}

func communitySource(ctx context.Context, profile Profile, store *remote.Store, logger *zap.Logger) (client.CommunitySource, error) {
	switch profile.Community.Source {
	case SourceRemote:
		return store, nil
	case SourceGitHub:
		gh := profile.Community.GitHub
		source, err := github.New(ctx, github.Config{
			Owner:        gh.Owner,
			Repo:         gh.Repo,
			Token:        gh.Token,
			HotThreshold: gh.HotThreshold,
			BaseURL:      gh.BaseURL,
		}, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("github community source: %w", err)
		}
		return source, nil
	default:
		source, err := static.New()
		if err != nil {
			return nil, fmt.Errorf("static community source: %w", err)
		}
		return source, nil
	}
}

func sessionFromProfile(profile Profile) domain.Session {
	return domain.Session{
		UserID:      strings.TrimSpace(profile.Session.UserID),
		Email:       strings.TrimSpace(profile.Session.Email),
		AccessToken: strings.TrimSpace(profile.Session.Token),
	}
}

func closeConn(conn *grpc.ClientConn) func() error {
	return func() error { return conn.Close() }
}
