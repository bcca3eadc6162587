package remote

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"github.com/louisbranch/cardclash/internal/services/datastore/api/grpc/datastore"
)

// ListEvents returns every event ordered by start time.
func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.selectRows(ctx, datastore.SelectRequest{
		Collection: datastore.CollectionEvents,
		OrderBy:    "start_date asc",
	})
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, eventFromRow(row))
	}
	return events, nil
}

// ListParticipations returns the session user's participations.
func (s *Store) ListParticipations(ctx context.Context, session domain.Session) ([]domain.Participation, error) {
	rows, err := s.selectRows(ctx, datastore.SelectRequest{
		Collection: datastore.CollectionParticipations,
		Filters:    datastore.Row{"user_id": session.UserID},
	}, s.credentials(session)...)
	if err != nil {
		return nil, err
	}
	parts := make([]domain.Participation, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, participationFromRow(row))
	}
	return parts, nil
}

// CreateParticipation registers the session user for eventID.
func (s *Store) CreateParticipation(ctx context.Context, session domain.Session, eventID string) (domain.Participation, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	row, err := s.client.Insert(ctx, datastore.InsertRequest{
		Collection: datastore.CollectionParticipations,
		Row:        datastore.Row{"event_id": eventID, "user_id": session.UserID},
	}, s.credentials(session)...)
	if err != nil {
		return domain.Participation{}, s.remoteError("insert participations", err)
	}
	return participationFromRow(row), nil
}

// DeleteParticipation removes the session user's participation in eventID.
func (s *Store) DeleteParticipation(ctx context.Context, session domain.Session, eventID string) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	_, err := s.client.Delete(ctx, datastore.DeleteRequest{
		Collection: datastore.CollectionParticipations,
		Filters:    datastore.Row{"event_id": eventID, "user_id": session.UserID},
	}, s.credentials(session)...)
	if err != nil {
		return s.remoteError("delete participations", err)
	}
	return nil
}

// ListPublishedNews returns published news, newest first.
func (s *Store) ListPublishedNews(ctx context.Context) ([]domain.NewsItem, error) {
	rows, err := s.selectRows(ctx, datastore.SelectRequest{
		Collection: datastore.CollectionNews,
		Filters:    datastore.Row{"published": true},
		OrderBy:    "published_at desc",
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.NewsItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, newsFromRow(row))
	}
	return items, nil
}

// ListDiscussions returns discussions, newest first.
func (s *Store) ListDiscussions(ctx context.Context) ([]domain.Discussion, error) {
	rows, err := s.selectRows(ctx, datastore.SelectRequest{
		Collection: datastore.CollectionDiscussions,
		OrderBy:    "created_at desc",
	})
	if err != nil {
		return nil, err
	}
	discussions := make([]domain.Discussion, 0, len(rows))
	for _, row := range rows {
		discussions = append(discussions, discussionFromRow(row))
	}
	return discussions, nil
}

// ListContributors returns contributors ordered by contribution count.
func (s *Store) ListContributors(ctx context.Context) ([]domain.Contributor, error) {
	rows, err := s.selectRows(ctx, datastore.SelectRequest{
		Collection: datastore.CollectionContributors,
		OrderBy:    "contributions desc",
	})
	if err != nil {
		return nil, err
	}
	contributors := make([]domain.Contributor, 0, len(rows))
	for _, row := range rows {
		contributors = append(contributors, contributorFromRow(row))
	}
	return contributors, nil
}

// Stats returns the community stats snapshot. A datastore without stats
// yields the zero snapshot.
func (s *Store) Stats(ctx context.Context) (domain.CommunityStats, error) {
	rows, err := s.selectRows(ctx, datastore.SelectRequest{Collection: datastore.CollectionCommunityStats})
	if err != nil {
		return domain.CommunityStats{}, err
	}
	if len(rows) == 0 {
		return domain.CommunityStats{}, nil
	}
	row := rows[0]
	return domain.CommunityStats{
		Members:        datastore.Int(row, "members"),
		OnlineNow:      datastore.Int(row, "online_now"),
		Discussions:    datastore.Int(row, "discussions"),
		EventsThisWeek: datastore.Int(row, "events_this_week"),
	}, nil
}

// RedeemStarterPack claims the starter pack for the session email.
func (s *Store) RedeemStarterPack(ctx context.Context, session domain.Session) (domain.Grant, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	row, err := s.client.Call(ctx, datastore.CallRequest{
		Procedure: datastore.ProcedureRedeemStarterPack,
		Args:      datastore.Row{"email": strings.TrimSpace(session.Email)},
	}, s.credentials(session)...)
	if err != nil {
		return domain.Grant{}, s.remoteError("redeem starter pack", err)
	}
	grant := domain.Grant{
		ID:        datastore.String(row, "id"),
		Email:     datastore.String(row, "email"),
		Kind:      datastore.String(row, "kind"),
		GrantedAt: datastore.Time(row, "granted_at"),
	}
	if grant.ID == "" {
		return domain.Grant{}, apperrors.New(apperrors.CodeRemoteFailure, fmt.Sprintf("redeem starter pack: malformed result %v", row))
	}
	return grant, nil
}

func eventFromRow(row datastore.Row) domain.Event {
	var rewards []domain.Reward
	for _, r := range datastore.Rows(row, "rewards") {
		rewards = append(rewards, domain.Reward{
			Kind:   datastore.String(r, "kind"),
			Amount: datastore.Int(r, "amount"),
			Label:  datastore.String(r, "label"),
		})
	}
	return domain.Event{
		ID:                  datastore.String(row, "id"),
		Title:               datastore.String(row, "title"),
		Description:         datastore.String(row, "description"),
		Category:            domain.EventCategory(datastore.String(row, "category")),
		Status:              domain.ParseEventStatus(datastore.String(row, "status")),
		StartDate:           datastore.Time(row, "start_date"),
		EndDate:             datastore.Time(row, "end_date"),
		MaxParticipants:     datastore.Int(row, "max_participants"),
		CurrentParticipants: datastore.Int(row, "current_participants"),
		Rewards:             rewards,
		Requirements:        datastore.StringMap(row, "requirements"),
	}
}

func participationFromRow(row datastore.Row) domain.Participation {
	return domain.Participation{
		ID:            datastore.String(row, "id"),
		EventID:       datastore.String(row, "event_id"),
		UserID:        datastore.String(row, "user_id"),
		JoinedAt:      datastore.Time(row, "joined_at"),
		Score:         datastore.Int(row, "score"),
		RewardClaimed: datastore.Bool(row, "reward_claimed"),
	}
}

func newsFromRow(row datastore.Row) domain.NewsItem {
	return domain.NewsItem{
		ID:          datastore.String(row, "id"),
		Title:       datastore.String(row, "title"),
		Content:     datastore.String(row, "content"),
		Category:    datastore.String(row, "category"),
		Priority:    domain.ParseNewsPriority(datastore.String(row, "priority")),
		Published:   datastore.Bool(row, "published"),
		PublishedAt: datastore.Time(row, "published_at"),
	}
}

func discussionFromRow(row datastore.Row) domain.Discussion {
	return domain.Discussion{
		ID:           datastore.String(row, "id"),
		Title:        datastore.String(row, "title"),
		Content:      datastore.String(row, "content"),
		AuthorID:     datastore.String(row, "author_id"),
		AuthorName:   datastore.String(row, "author_name"),
		AuthorAvatar: datastore.String(row, "author_avatar"),
		Replies:      datastore.Int(row, "replies"),
		Likes:        datastore.Int(row, "likes"),
		Views:        datastore.Int(row, "views"),
		Tags:         datastore.Strings(row, "tags"),
		CreatedAt:    datastore.Time(row, "created_at"),
		UpdatedAt:    datastore.Time(row, "updated_at"),
		Hot:          datastore.Bool(row, "hot"),
	}
}

func contributorFromRow(row datastore.Row) domain.Contributor {
	return domain.Contributor{
		ID:            datastore.String(row, "id"),
		Name:          datastore.String(row, "name"),
		Avatar:        datastore.String(row, "avatar"),
		Contributions: datastore.Int(row, "contributions"),
		Level:         datastore.Int(row, "level"),
		Specialty:     datastore.String(row, "specialty"),
	}
}
