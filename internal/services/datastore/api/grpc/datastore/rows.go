package datastore

import (
	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
)

func eventRow(e storage.Event) Row {
	rewards := make([]any, 0, len(e.Rewards))
	for _, r := range e.Rewards {
		reward := Row{"kind": r.Kind, "amount": r.Amount}
		if r.Label != "" {
			reward["label"] = r.Label
		}
		rewards = append(rewards, reward)
	}
	requirements := make(Row, len(e.Requirements))
	for k, v := range e.Requirements {
		requirements[k] = v
	}
	return Row{
		"id":                   e.ID,
		"title":                e.Title,
		"description":          e.Description,
		"category":             e.Category,
		"status":               e.Status,
		"start_date":           formatTime(e.StartDate),
		"end_date":             formatTime(e.EndDate),
		"max_participants":     e.MaxParticipants,
		"current_participants": e.CurrentParticipants,
		"rewards":              rewards,
		"requirements":         requirements,
		"created_at":           formatTime(e.CreatedAt),
		"updated_at":           formatTime(e.UpdatedAt),
	}
}

func participationRow(p storage.Participation) Row {
	return Row{
		"id":             p.ID,
		"event_id":       p.EventID,
		"user_id":        p.UserID,
		"joined_at":      formatTime(p.JoinedAt),
		"score":          p.Score,
		"reward_claimed": p.RewardClaimed,
	}
}

func newsRow(n storage.NewsItem) Row {
	return Row{
		"id":           n.ID,
		"title":        n.Title,
		"content":      n.Content,
		"category":     n.Category,
		"priority":     n.Priority,
		"published":    n.Published,
		"published_at": formatTime(n.PublishedAt),
	}
}

func discussionRow(d storage.Discussion) Row {
	tags := make([]any, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tags = append(tags, tag)
	}
	return Row{
		"id":            d.ID,
		"title":         d.Title,
		"content":       d.Content,
		"author_id":     d.AuthorID,
		"author_name":   d.AuthorName,
		"author_avatar": d.AuthorAvatar,
		"replies":       d.Replies,
		"likes":         d.Likes,
		"views":         d.Views,
		"tags":          tags,
		"created_at":    formatTime(d.CreatedAt),
		"updated_at":    formatTime(d.UpdatedAt),
		"hot":           d.Hot,
	}
}

func contributorRow(c storage.Contributor) Row {
	return Row{
		"id":            c.ID,
		"name":          c.Name,
		"avatar":        c.Avatar,
		"contributions": c.Contributions,
		"level":         c.Level,
		"specialty":     c.Specialty,
	}
}

func statsRow(s storage.CommunityStats) Row {
	return Row{
		"members":          s.Members,
		"online_now":       s.OnlineNow,
		"discussions":      s.Discussions,
		"events_this_week": s.EventsThisWeek,
		"updated_at":       formatTime(s.UpdatedAt),
	}
}

func grantRow(g storage.Grant) Row {
	return Row{
		"id":         g.ID,
		"email":      g.Email,
		"kind":       g.Kind,
		"granted_at": formatTime(g.GrantedAt),
	}
}
