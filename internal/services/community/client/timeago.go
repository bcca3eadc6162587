package client

import (
	"time"

	"github.com/louisbranch/cardclash/internal/platform/i18n/catalog"
	"golang.org/x/text/message"
)

const day = 24 * time.Hour

// FormatTimeAgo renders the age of then at now as a coarse en-US label.
func FormatTimeAgo(then, now time.Time) string {
	return FormatTimeAgoIn(catalog.BaseLocale, then, now)
}

// FormatTimeAgoIn renders the age of then at now in locale. Ages under an
// hour, including timestamps in the future, are "just now"; under a day the
// whole number of hours; otherwise the whole number of days. Both
// boundaries floor.
func FormatTimeAgoIn(locale string, then, now time.Time) string {
	p := catalog.Default().Printer(locale)
	age := now.Sub(then)
	switch {
	case age < time.Hour:
		return p.Sprintf(message.Key("community.time_ago.just_now", "just now"))
	case age < day:
		return p.Sprintf(message.Key("community.time_ago.hours", "%dh ago"), int(age/time.Hour))
	default:
		return p.Sprintf(message.Key("community.time_ago.days", "%dd ago"), int(age/day))
	}
}
