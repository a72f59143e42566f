package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/careers-proxy/internal/config"
	"github.com/justsurfingit/careers-proxy/internal/models"
)

// FeedCacheControl is the caching policy for the rendered feed: shared caches
// hold it for 10 minutes and may serve it stale for 5 more while revalidating.
const FeedCacheControl = "public, s-maxage=600, stale-while-revalidate=300"

// FeedService renders the published-jobs listing as RSS 2.0.
type FeedService struct {
	feed config.Feed
}

func NewFeedService(feed config.Feed) *FeedService {
	return &FeedService{feed: feed}
}

// xmlEscape covers the five reserved characters for user-controlled text.
var xmlEscape = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// RenderRSS builds the feed document. Each item's pubDate is the job's own
// published timestamp; render time is used only when the upstream omitted it.
func (s *FeedService) RenderRSS(jobs []models.JobDetails, now time.Time) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0">` + "\n<channel>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", xmlEscape.Replace(s.feed.Title))
	fmt.Fprintf(&b, "<link>%s</link>\n", xmlEscape.Replace(s.feed.Link))
	fmt.Fprintf(&b, "<description>%s</description>\n", xmlEscape.Replace(s.feed.Description))
	fmt.Fprintf(&b, "<language>%s</language>\n", xmlEscape.Replace(s.feed.Language))
	fmt.Fprintf(&b, "<lastBuildDate>%s</lastBuildDate>\n", now.Format(time.RFC1123Z))

	for _, j := range jobs {
		title := j.Title
		if j.Location != "" {
			title = fmt.Sprintf("%s (%s)", j.Title, j.Location)
		}

		pub := now
		if j.PublishedAt != nil {
			pub = *j.PublishedAt
		}

		b.WriteString("<item>\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", xmlEscape.Replace(title))
		fmt.Fprintf(&b, "<link>%s/%s</link>\n", xmlEscape.Replace(s.feed.JobBaseURL), xmlEscape.Replace(j.ID))
		fmt.Fprintf(&b, "<guid isPermaLink=\"true\">%s/%s</guid>\n", xmlEscape.Replace(s.feed.JobBaseURL), xmlEscape.Replace(j.ID))
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", pub.Format(time.RFC1123Z))
		fmt.Fprintf(&b, "<description><![CDATA[Location: %s | Job ID: %s]]></description>\n",
			cdataSafe(j.DisplayLocation()), cdataSafe(j.ID))
		b.WriteString("</item>\n")
	}

	b.WriteString("</channel>\n</rss>\n")
	return b.String()
}

// cdataSafe keeps user text from terminating the CDATA section early.
func cdataSafe(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]&gt;")
}
