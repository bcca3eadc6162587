package datastore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.einride.tech/aip/ordering"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/platform/grpc/pagination"
	"github.com/louisbranch/cardclash/internal/platform/id"
	"github.com/louisbranch/cardclash/internal/platform/requestctx"
	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
)

const (
	defaultSelectLimit = 100
	maxSelectLimit     = 500

	starterPackKind = "starter_pack"
)

type filterKind int

const (
	stringFilter filterKind = iota
	boolFilter
)

// collectionRules lists what a Select may filter and order a collection by.
type collectionRules struct {
	filters map[string]filterKind
	orderBy pagination.OrderByConfig
	// private collections need a caller and are scoped to its user id.
	private bool
}

var collections = map[string]collectionRules{
	CollectionEvents: {
		filters: map[string]filterKind{"id": stringFilter, "status": stringFilter, "category": stringFilter},
		orderBy: pagination.OrderByConfig{
			Default: "start_date asc",
			Allowed: []string{"id", "title", "status", "start_date", "end_date", "current_participants"},
		},
	},
	CollectionParticipations: {
		filters: map[string]filterKind{"event_id": stringFilter, "user_id": stringFilter},
		orderBy: pagination.OrderByConfig{
			Default: "joined_at asc",
			Allowed: []string{"joined_at", "event_id", "score"},
		},
		private: true,
	},
	CollectionNews: {
		filters: map[string]filterKind{"published": boolFilter, "category": stringFilter, "priority": stringFilter},
		orderBy: pagination.OrderByConfig{
			Default: "published_at desc",
			Allowed: []string{"published_at", "priority", "title"},
		},
	},
	CollectionDiscussions: {
		filters: map[string]filterKind{"hot": boolFilter, "author_id": stringFilter},
		orderBy: pagination.OrderByConfig{
			Default: "created_at desc",
			Allowed: []string{"created_at", "updated_at", "replies", "likes", "views"},
		},
	},
	CollectionContributors: {
		filters: map[string]filterKind{},
		orderBy: pagination.OrderByConfig{
			Default: "contributions desc",
			Allowed: []string{"contributions", "level", "name"},
		},
	},
	CollectionCommunityStats: {
		filters: map[string]filterKind{},
	},
}

// Service implements DatastoreServer over a storage.Store.
type Service struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
	newID  func() (string, error)
}

// NewService creates a datastore service backed by store.
func NewService(store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		clock:  time.Now,
		newID:  id.NewID,
	}
}

// Select returns the rows of one collection.
func (s *Service) Select(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, s.fail(ctx, "select", fieldError("request"))
	}
	if s == nil || s.store == nil {
		return nil, s.fail(ctx, "select", errors.New("datastore store is not configured"))
	}
	req, err := parseSelect(in)
	if err != nil {
		return nil, s.fail(ctx, "select", err)
	}
	rows, err := s.selectRows(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, "select", err)
	}
	list := make([]any, 0, len(rows))
	for _, row := range rows {
		list = append(list, row)
	}
	return s.respond(ctx, "select", Row{"rows": list})
}

func (s *Service) selectRows(ctx context.Context, req SelectRequest) ([]Row, error) {
	rules, ok := collections[req.Collection]
	if !ok {
		return nil, unknownCollection(req.Collection)
	}
	if err := checkFilters(rules, req.Filters); err != nil {
		return nil, err
	}
	if rules.private {
		caller := requestctx.CallerFromContext(ctx)
		if !caller.Authenticated() {
			return nil, apperrors.New(apperrors.CodeNotAuthenticated, "collection requires a session")
		}
		req.Filters["user_id"] = caller.UserID
	}
	opts, err := listOptions(rules, req)
	if err != nil {
		return nil, err
	}

	str := func(key string) string { return String(req.Filters, key) }
	var out []Row
	switch req.Collection {
	case CollectionEvents:
		events, err := s.store.ListEvents(ctx, storage.EventFilter{ID: str("id"), Status: str("status"), Category: str("category")}, opts)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			out = append(out, eventRow(e))
		}
	case CollectionParticipations:
		parts, err := s.store.ListParticipations(ctx, storage.ParticipationFilter{EventID: str("event_id"), UserID: str("user_id")}, opts)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			out = append(out, participationRow(p))
		}
	case CollectionNews:
		items, err := s.store.ListNews(ctx, storage.NewsFilter{
			Published: boolPtr(req.Filters, "published"),
			Category:  str("category"),
			Priority:  str("priority"),
		}, opts)
		if err != nil {
			return nil, err
		}
		for _, n := range items {
			out = append(out, newsRow(n))
		}
	case CollectionDiscussions:
		discussions, err := s.store.ListDiscussions(ctx, storage.DiscussionFilter{
			Hot:      boolPtr(req.Filters, "hot"),
			AuthorID: str("author_id"),
		}, opts)
		if err != nil {
			return nil, err
		}
		for _, d := range discussions {
			out = append(out, discussionRow(d))
		}
	case CollectionContributors:
		contributors, err := s.store.ListContributors(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, c := range contributors {
			out = append(out, contributorRow(c))
		}
	case CollectionCommunityStats:
		stats, err := s.store.GetCommunityStats(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, statsRow(stats))
	}
	return out, nil
}

// Insert writes one row. Only participations accept inserts; the store
// re-validates the event before claiming a seat.
func (s *Service) Insert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, s.fail(ctx, "insert", fieldError("request"))
	}
	if s == nil || s.store == nil {
		return nil, s.fail(ctx, "insert", errors.New("datastore store is not configured"))
	}
	req, err := parseInsert(in)
	if err != nil {
		return nil, s.fail(ctx, "insert", err)
	}
	row, err := s.insertParticipation(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, "insert", err)
	}
	return s.respond(ctx, "insert", Row{"row": row})
}

func (s *Service) insertParticipation(ctx context.Context, req InsertRequest) (Row, error) {
	if err := writableCollection(req.Collection); err != nil {
		return nil, err
	}
	caller := requestctx.CallerFromContext(ctx)
	if !caller.Authenticated() {
		return nil, apperrors.New(apperrors.CodeNotAuthenticated, "insert requires a session")
	}
	eventID := strings.TrimSpace(String(req.Row, "event_id"))
	if eventID == "" {
		return nil, fieldError("event_id")
	}
	if userID := strings.TrimSpace(String(req.Row, "user_id")); userID != "" && userID != caller.UserID {
		return nil, apperrors.WithMetadata(apperrors.CodePermissionDenied, "user_id does not match the session",
			map[string]string{"Field": "user_id"})
	}
	participationID, err := s.newID()
	if err != nil {
		return nil, err
	}

	joined, err := s.store.JoinEvent(ctx, storage.Participation{
		ID:       participationID,
		EventID:  eventID,
		UserID:   caller.UserID,
		JoinedAt: s.clock().UTC(),
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return nil, apperrors.Wrap(apperrors.CodeEventNotFound, "event not found", err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return nil, apperrors.Wrap(apperrors.CodeAlreadyJoined, "participation already exists", err)
	case errors.Is(err, storage.ErrNotJoinable):
		return nil, apperrors.Wrap(apperrors.CodeEventNotJoinable, "event is not active", err)
	case errors.Is(err, storage.ErrEventFull):
		return nil, apperrors.Wrap(apperrors.CodeEventFull, "event is at capacity", err)
	default:
		return nil, err
	}
	s.logger.Info("participation created",
		zap.String("event_id", joined.EventID),
		zap.String("user_id", joined.UserID),
	)
	return participationRow(joined), nil
}

// Delete removes the caller's participation in one event.
func (s *Service) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, s.fail(ctx, "delete", fieldError("request"))
	}
	if s == nil || s.store == nil {
		return nil, s.fail(ctx, "delete", errors.New("datastore store is not configured"))
	}
	req, err := parseDelete(in)
	if err != nil {
		return nil, s.fail(ctx, "delete", err)
	}
	deleted, err := s.deleteParticipation(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, "delete", err)
	}
	return s.respond(ctx, "delete", Row{"deleted": deleted})
}

func (s *Service) deleteParticipation(ctx context.Context, req DeleteRequest) (int, error) {
	if err := writableCollection(req.Collection); err != nil {
		return 0, err
	}
	if err := checkFilters(collections[CollectionParticipations], req.Filters); err != nil {
		return 0, err
	}
	caller := requestctx.CallerFromContext(ctx)
	if !caller.Authenticated() {
		return 0, apperrors.New(apperrors.CodeNotAuthenticated, "delete requires a session")
	}
	eventID := strings.TrimSpace(String(req.Filters, "event_id"))
	if eventID == "" {
		return 0, fieldError("event_id")
	}
	deleted, err := s.store.LeaveEvent(ctx, eventID, caller.UserID)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, apperrors.New(apperrors.CodeParticipationNotFound, "participation not found")
	}
	s.logger.Info("participation deleted",
		zap.String("event_id", eventID),
		zap.String("user_id", caller.UserID),
	)
	return deleted, nil
}

// Call runs a named procedure.
func (s *Service) Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, s.fail(ctx, "call", fieldError("request"))
	}
	if s == nil || s.store == nil {
		return nil, s.fail(ctx, "call", errors.New("datastore store is not configured"))
	}
	req, err := parseCall(in)
	if err != nil {
		return nil, s.fail(ctx, "call", err)
	}
	if req.Procedure != ProcedureRedeemStarterPack {
		return nil, s.fail(ctx, "call", apperrors.WithMetadata(apperrors.CodeUnknownProcedure,
			"unknown procedure", map[string]string{"Procedure": req.Procedure}))
	}
	result, err := s.redeemStarterPack(ctx, req.Args)
	if err != nil {
		return nil, s.fail(ctx, "call", err)
	}
	return s.respond(ctx, "call", Row{"result": result})
}

func (s *Service) redeemStarterPack(ctx context.Context, args Row) (Row, error) {
	caller := requestctx.CallerFromContext(ctx)
	if !caller.Authenticated() {
		return nil, apperrors.New(apperrors.CodeNotAuthenticated, "redeem requires a session")
	}
	email := strings.ToLower(strings.TrimSpace(caller.Email))
	if email == "" {
		return nil, apperrors.New(apperrors.CodeStarterPackEmail, "session has no email")
	}
	if requested := strings.TrimSpace(String(args, "email")); requested != "" && !strings.EqualFold(requested, email) {
		return nil, apperrors.WithMetadata(apperrors.CodePermissionDenied, "email does not match the session",
			map[string]string{"Field": "email"})
	}
	grantID, err := s.newID()
	if err != nil {
		return nil, err
	}
	grant := storage.Grant{
		ID:        grantID,
		Email:     email,
		Kind:      starterPackKind,
		GrantedAt: s.clock().UTC(),
	}
	if err := s.store.CreateGrant(ctx, grant); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeStarterPackRedeemed, "starter pack already redeemed",
				map[string]string{"Email": email}, err)
		}
		return nil, err
	}
	s.logger.Info("starter pack redeemed", zap.String("user_id", caller.UserID))
	return grantRow(grant), nil
}

func (s *Service) respond(ctx context.Context, op string, fields Row) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	return out, nil
}

// fail converts err to a gRPC status. Errors without a domain code are
// logged since the caller only sees a generic message.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) && ctx.Err() == nil {
		logger := zap.NewNop()
		if s != nil && s.logger != nil {
			logger = s.logger
		}
		logger.Error("datastore "+op, zap.Error(err))
	}
	return apperrors.HandleError(err, auth.LocaleFromContext(ctx))
}

func writableCollection(name string) error {
	if _, ok := collections[name]; !ok {
		return unknownCollection(name)
	}
	if name != CollectionParticipations {
		return apperrors.WithMetadata(apperrors.CodePermissionDenied, "collection is read-only",
			map[string]string{"Collection": name})
	}
	return nil
}

func checkFilters(rules collectionRules, filters Row) error {
	for key, value := range filters {
		kind, ok := rules.filters[key]
		if !ok {
			return fieldError("filters." + key)
		}
		switch kind {
		case stringFilter:
			if _, ok := value.(string); !ok {
				return fieldError("filters." + key)
			}
		case boolFilter:
			if _, ok := value.(bool); !ok {
				return fieldError("filters." + key)
			}
		}
	}
	return nil
}

func listOptions(rules collectionRules, req SelectRequest) (storage.ListOptions, error) {
	opts := storage.ListOptions{}
	if req.Limit > 0 {
		opts.Limit = pagination.ClampPageSize(int32(min(req.Limit, maxSelectLimit)), pagination.PageSizeConfig{
			Default: defaultSelectLimit,
			Max:     maxSelectLimit,
		})
	}
	if len(rules.orderBy.Allowed) == 0 {
		if req.OrderBy != "" {
			return storage.ListOptions{}, fieldError("order_by")
		}
		return opts, nil
	}
	orderBy, err := pagination.ParseOrderBy(req.OrderBy, rules.orderBy)
	if err != nil {
		return storage.ListOptions{}, apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, "invalid order_by",
			map[string]string{"Field": "order_by"}, err)
	}
	opts.OrderBy = orderFields(orderBy)
	return opts, nil
}

func orderFields(orderBy ordering.OrderBy) []storage.OrderField {
	fields := make([]storage.OrderField, 0, len(orderBy.Fields))
	for _, f := range orderBy.Fields {
		fields = append(fields, storage.OrderField{Field: f.Path, Desc: f.Desc})
	}
	return fields
}

func boolPtr(r Row, key string) *bool {
	v, ok := r[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

func fieldError(field string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument, "invalid "+field, map[string]string{"Field": field})
}

func unknownCollection(name string) error {
	return apperrors.WithMetadata(apperrors.CodeUnknownCollection, "unknown collection",
		map[string]string{"Collection": name})
}

var _ DatastoreServer = (*Service)(nil)
