// Package client mirrors community collections from a remote store and
// applies optimistic participation updates against those mirrors.
package client

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/platform/logging"
	platformotel "github.com/louisbranch/cardclash/internal/platform/otel"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/louisbranch/cardclash/internal/services/community/client"

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("community client closed")

// Client holds the local mirrors. It is safe for concurrent use; every
// mirror is replaced under a single lock so readers only observe whole
// snapshots.
type Client struct {
	events    EventStore
	news      NewsStore
	community CommunitySource
	grants    GrantStore

	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
	locale string

	closed atomic.Bool
	guards map[Collection]*loadGuard

	mu             sync.RWMutex
	eventMirror    []domain.Event
	participations []domain.Participation
	newsMirror     []domain.NewsItem
	discussions    []domain.Discussion
	contributors   []domain.Contributor
	stats          domain.CommunityStats
	errs           map[Collection]error
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocale selects the locale for user-facing messages.
func WithLocale(locale string) Option {
	return func(c *Client) {
		if locale = strings.TrimSpace(locale); locale != "" {
			c.locale = locale
		}
	}
}

// New builds a client over the given stores. grants may be nil when starter
// pack redemption is not offered.
func New(events EventStore, news NewsStore, community CommunitySource, grants GrantStore, opts ...Option) *Client {
	c := &Client{
		events:    events,
		news:      news,
		community: community,
		grants:    grants,
		logger:    zap.NewNop(),
		tracer:    platformotel.Tracer(tracerName),
		now:       time.Now,
		locale:    apperrors.DefaultLocale,
		guards:    make(map[Collection]*loadGuard, len(allCollections)),
		errs:      map[Collection]error{},
	}
	for _, coll := range allCollections {
		c.guards[coll] = &loadGuard{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close marks the client as torn down. Results of operations still in
// flight are discarded instead of being applied to the mirrors.
func (c *Client) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.logger.Debug("community client closed")
	}
}

// Errors returns the last load error per collection. A successful load
// clears its collection's entry.
func (c *Client) Errors() map[Collection]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.errs)
}

// Err returns the last load error recorded for coll.
func (c *Client) Err(coll Collection) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs[coll]
}

// TimeAgo renders then relative to the client clock in the client locale.
func (c *Client) TimeAgo(then time.Time) string {
	return FormatTimeAgoIn(c.locale, then, c.now())
}

// load runs one fetch and applies its result to a mirror if the fetch is
// still the newest one for that collection and the client is open.
func load[T any](ctx context.Context, c *Client, coll Collection, fetch func(context.Context) (T, error), apply func(T)) error {
	if c.closed.Load() {
		return ErrClosed
	}
	ctx, span := c.tracer.Start(ctx, "community.load", trace.WithAttributes(attribute.String("collection", string(coll))))
	defer span.End()

	guard := c.guards[coll]
	ticket := guard.ticket()
	value, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.mu.Lock()
	admitted := !c.closed.Load() && guard.admit(ticket)
	if admitted {
		if err != nil {
			c.errs[coll] = err
		} else {
			delete(c.errs, coll)
			apply(value)
		}
	}
	c.mu.Unlock()

	switch {
	case !admitted:
		c.logger.Debug("discarded stale load", zap.String("collection", string(coll)), zap.Uint64("ticket", ticket))
	case err != nil:
		c.logger.Warn("load failed", zap.String("collection", string(coll)), zap.Error(err))
	default:
		c.logger.Debug("mirror replaced", zap.String("collection", string(coll)))
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", coll, err)
	}
	return nil
}

func (c *Client) fail(err *apperrors.Error) Result {
	return Result{Err: err, Message: apperrors.UserMessage(err, c.locale)}
}

// remoteFailure converts an error surfaced by a store into REMOTE_FAILURE,
// passing the remote message through as the reason.
func (c *Client) remoteFailure(op string, err error) Result {
	reason := c.remoteReason(err)
	return c.fail(apperrors.WrapWithMetadata(
		apperrors.CodeRemoteFailure,
		fmt.Sprintf("%s: %v", op, err),
		map[string]string{"Reason": reason},
		err,
	))
}

func (c *Client) remoteReason(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Code != apperrors.CodeRemoteFailure && appErr.Code != apperrors.CodeUnknown {
		return apperrors.UserMessage(appErr, c.locale)
	}
	if msg, ok := apperrors.LocalizedMessage(err); ok {
		return msg
	}
	return err.Error()
}

func markSpan(span trace.Span, res Result) {
	if res.OK() {
		return
	}
	span.SetAttributes(attribute.String("error.code", string(res.Code())))
	span.SetStatus(codes.Error, res.Err.Error())
}
