package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LoadEvents replaces the event mirror with every event ordered by start
// time ascending. On failure the previous mirror is kept and the error is
// recorded.
func (c *Client) LoadEvents(ctx context.Context) error {
	return load(ctx, c, CollectionEvents, c.events.ListEvents, func(events []domain.Event) {
		mirror := make([]domain.Event, 0, len(events))
		for _, e := range events {
			mirror = append(mirror, e.Clone())
		}
		slices.SortStableFunc(mirror, func(a, b domain.Event) int {
			return a.StartDate.Compare(b.StartDate)
		})
		c.eventMirror = mirror
	})
}

// LoadParticipations replaces the participation mirror with the session
// user's participations. It does nothing for an anonymous session.
func (c *Client) LoadParticipations(ctx context.Context, session domain.Session) error {
	if !session.Authenticated() {
		return nil
	}
	fetch := func(ctx context.Context) ([]domain.Participation, error) {
		return c.events.ListParticipations(ctx, session)
	}
	return load(ctx, c, CollectionParticipations, fetch, func(parts []domain.Participation) {
		c.participations = slices.Clone(parts)
	})
}

// JoinEvent registers the session user for eventID. Preconditions are
// checked against the local mirrors before the store is contacted.
func (c *Client) JoinEvent(ctx context.Context, session domain.Session, eventID string) Result {
	ctx, span := c.tracer.Start(ctx, "community.JoinEvent", trace.WithAttributes(attribute.String("event.id", eventID)))
	defer span.End()

	res := c.joinEvent(ctx, session, eventID)
	markSpan(span, res)
	return res
}

func (c *Client) joinEvent(ctx context.Context, session domain.Session, eventID string) Result {
	if !session.Authenticated() {
		return c.fail(apperrors.New(apperrors.CodeNotAuthenticated, "join event: no authenticated user"))
	}
	if c.closed.Load() {
		return c.fail(apperrors.Wrap(apperrors.CodeUnknown, "join event: client closed", ErrClosed))
	}
	if err := c.checkJoin(session.UserID, eventID); err != nil {
		c.logger.Info("join rejected locally",
			zap.String("event_id", eventID),
			zap.String("user_id", session.UserID),
			zap.String("code", string(err.Code)))
		return c.fail(err)
	}

	part, err := c.events.CreateParticipation(ctx, session, eventID)
	if err != nil {
		c.logger.Warn("create participation failed", zap.String("event_id", eventID), zap.Error(err))
		return c.remoteFailure("create participation", err)
	}
	if part.EventID == "" {
		part.EventID = eventID
	}
	if part.UserID == "" {
		part.UserID = session.UserID
	}
	if part.JoinedAt.IsZero() {
		part.JoinedAt = c.now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		c.logger.Debug("discarded join result after close", zap.String("event_id", eventID))
		return Result{}
	}
	if !hasParticipation(c.participations, eventID, session.UserID) {
		c.participations = append(c.participations, part)
	}
	if i := indexEvent(c.eventMirror, eventID); i >= 0 {
		if e := &c.eventMirror[i]; e.CurrentParticipants < e.MaxParticipants {
			e.CurrentParticipants++
		}
	}
	c.guards[CollectionParticipations].invalidate()
	c.guards[CollectionEvents].invalidate()
	return Result{}
}

func (c *Client) checkJoin(userID, eventID string) *apperrors.Error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if hasParticipation(c.participations, eventID, userID) {
		return apperrors.WithMetadata(apperrors.CodeAlreadyJoined,
			fmt.Sprintf("user %s already joined event %s", userID, eventID),
			map[string]string{"EventID": eventID})
	}
	i := indexEvent(c.eventMirror, eventID)
	if i < 0 {
		return apperrors.WithMetadata(apperrors.CodeEventNotJoinable,
			fmt.Sprintf("event %s is not in the mirror", eventID),
			map[string]string{"EventID": eventID})
	}
	event := c.eventMirror[i]
	if !event.Status.Joinable() {
		return apperrors.WithMetadata(apperrors.CodeEventNotJoinable,
			fmt.Sprintf("event %s has status %s", eventID, event.Status),
			map[string]string{"EventID": eventID, "Status": string(event.Status)})
	}
	if event.Full() {
		return apperrors.WithMetadata(apperrors.CodeEventFull,
			fmt.Sprintf("event %s is full (%d/%d)", eventID, event.CurrentParticipants, event.MaxParticipants),
			map[string]string{"EventID": eventID})
	}
	return nil
}

// LeaveEvent removes the session user's participation in eventID.
func (c *Client) LeaveEvent(ctx context.Context, session domain.Session, eventID string) Result {
	ctx, span := c.tracer.Start(ctx, "community.LeaveEvent", trace.WithAttributes(attribute.String("event.id", eventID)))
	defer span.End()

	res := c.leaveEvent(ctx, session, eventID)
	markSpan(span, res)
	return res
}

func (c *Client) leaveEvent(ctx context.Context, session domain.Session, eventID string) Result {
	if !session.Authenticated() {
		return c.fail(apperrors.New(apperrors.CodeNotAuthenticated, "leave event: no authenticated user"))
	}
	if c.closed.Load() {
		return c.fail(apperrors.Wrap(apperrors.CodeUnknown, "leave event: client closed", ErrClosed))
	}

	if err := c.events.DeleteParticipation(ctx, session, eventID); err != nil {
		c.logger.Warn("delete participation failed", zap.String("event_id", eventID), zap.Error(err))
		return c.remoteFailure("delete participation", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		c.logger.Debug("discarded leave result after close", zap.String("event_id", eventID))
		return Result{}
	}
	c.participations = slices.DeleteFunc(c.participations, func(p domain.Participation) bool {
		return p.EventID == eventID && p.UserID == session.UserID
	})
	if i := indexEvent(c.eventMirror, eventID); i >= 0 {
		c.eventMirror[i].CurrentParticipants = max(c.eventMirror[i].CurrentParticipants-1, 0)
	}
	c.guards[CollectionParticipations].invalidate()
	c.guards[CollectionEvents].invalidate()
	return Result{}
}

// IsParticipating reports whether the participation mirror holds an entry
// for eventID.
func (c *Client) IsParticipating(eventID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.ContainsFunc(c.participations, func(p domain.Participation) bool {
		return p.EventID == eventID
	})
}

// Events returns a copy of the event mirror.
func (c *Client) Events() []domain.Event {
	return c.filterEvents(func(domain.Event) bool { return true })
}

// Event returns one event from the mirror.
func (c *Client) Event(eventID string) (domain.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexEvent(c.eventMirror, eventID); i >= 0 {
		return c.eventMirror[i].Clone(), true
	}
	return domain.Event{}, false
}

// ActiveEvents returns mirrored events with status active, in mirror order.
func (c *Client) ActiveEvents() []domain.Event {
	return c.filterEvents(func(e domain.Event) bool { return e.Status == domain.EventStatusActive })
}

// UpcomingEvents returns mirrored events with status upcoming, in mirror order.
func (c *Client) UpcomingEvents() []domain.Event {
	return c.filterEvents(func(e domain.Event) bool { return e.Status == domain.EventStatusUpcoming })
}

func (c *Client) filterEvents(keep func(domain.Event) bool) []domain.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Event, 0, len(c.eventMirror))
	for _, e := range c.eventMirror {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Participations returns a copy of the participation mirror.
func (c *Client) Participations() []domain.Participation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.participations)
}

// Reconcile reloads events and participations so optimistic counters are
// replaced by the store's authoritative ones.
func (c *Client) Reconcile(ctx context.Context, session domain.Session) error {
	return errors.Join(c.LoadEvents(ctx), c.LoadParticipations(ctx, session))
}

// RefreshEvery reconciles on every tick until ctx ends or the client is
// closed. Failed refreshes are logged and recorded, never fatal.
func (c *Client) RefreshEvery(ctx context.Context, session domain.Session, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if c.closed.Load() {
				return ErrClosed
			}
			if err := c.Reconcile(ctx, session); err != nil {
				c.logger.Warn("refresh failed", zap.Error(err))
			}
		}
	}
}

func indexEvent(events []domain.Event, eventID string) int {
	return slices.IndexFunc(events, func(e domain.Event) bool { return e.ID == eventID })
}

func hasParticipation(parts []domain.Participation, eventID, userID string) bool {
	return slices.ContainsFunc(parts, func(p domain.Participation) bool {
		return p.EventID == eventID && p.UserID == userID
	})
}

// sortByTimeDesc is shared by news and discussions.
func sortByTimeDesc[T any](items []T, at func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return at(b).Compare(at(a))
	})
}
