package cardclash

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/louisbranch/cardclash/internal/services/community/client"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func renderEvents(out io.Writer, c *client.Client, events []domain.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(out, "no events")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tPLAYERS\tSTARTS\tJOINED")
	for _, e := range events {
		joined := ""
		if c.IsParticipating(e.ID) {
			joined = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			e.ID, e.Status, e.Title, e.CurrentParticipants, e.MaxParticipants,
			e.StartDate.UTC().Format(time.DateTime), joined)
	}
	return tw.Flush()
}

func renderNews(out io.Writer, c *client.Client, items []domain.NewsItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "no news")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "PRIORITY\tTITLE\tCATEGORY\tPUBLISHED")
	for _, n := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Priority, n.Title, n.Category, c.TimeAgo(n.PublishedAt))
	}
	return tw.Flush()
}

func renderDiscussions(out io.Writer, c *client.Client, discussions []domain.Discussion) error {
	if len(discussions) == 0 {
		_, err := fmt.Fprintln(out, "no discussions")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tREPLIES\tLIKES\tTAGS\tCREATED")
	for _, d := range discussions {
		title := d.Title
		if d.Hot {
			title = "* " + title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			d.ID, title, d.AuthorName, d.Replies, d.Likes, strings.Join(d.Tags, ","), c.TimeAgo(d.CreatedAt))
	}
	return tw.Flush()
}

func renderContributors(out io.Writer, contributors []domain.Contributor) error {
	if len(contributors) == 0 {
		_, err := fmt.Fprintln(out, "no contributors")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "NAME\tLEVEL\tCONTRIBUTIONS\tSPECIALTY")
	for _, contributor := range contributors {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", contributor.Name, contributor.Level, contributor.Contributions, contributor.Specialty)
	}
	return tw.Flush()
}

func renderStats(out io.Writer, stats domain.CommunityStats) error {
	tw := newTable(out)
	fmt.Fprintf(tw, "members\t%d\n", stats.Members)
	fmt.Fprintf(tw, "online now\t%d\n", stats.OnlineNow)
	fmt.Fprintf(tw, "discussions\t%d\n", stats.Discussions)
	fmt.Fprintf(tw, "events this week\t%d\n", stats.EventsThisWeek)
	return tw.Flush()
}
