package pipeline

import (
	"bytes"
	"cmp"
	"context"
	"log/slog"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/airightslab/monitor/app/config"
	"github.com/airightslab/monitor/app/content"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml"

// FeedAdapter produces article candidates from a fixed list of
// RSS/Atom feeds.
type FeedAdapter struct {
	client    *http.Client
	parser    *gofeed.Parser
	extractor *Extractor
	feeds     []config.Feed
	userAgent string
}

func NewFeedAdapter(client *http.Client, extractor *Extractor, feeds []config.Feed, userAgent string) *FeedAdapter {
	return &FeedAdapter{
		client:    client,
		parser:    gofeed.NewParser(),
		extractor: extractor,
		feeds:     feeds,
		userAgent: userAgent,
	}
}

func (a *FeedAdapter) Name() string {
	return "rss"
}

// Fetch pulls every configured feed. A feed that fails to fetch or
// parse is counted and skipped; it never aborts the remaining feeds.
func (a *FeedAdapter) Fetch(ctx context.Context) ([]RawItem, FetchStats, error) {
	var items []RawItem
	var stats FetchStats

	for _, feed := range a.feeds {
		slog.Info("Fetching feed", "url", feed.URL)

		data, err := fetchURL(ctx, a.client, feed.URL, a.userAgent, feedAccept)
		if err != nil {
			slog.Error("Failed to fetch feed, skipping", "url", feed.URL, "error", err)
			stats.Failed++
			continue
		}

		parsed, err := a.parser.Parse(bytes.NewReader(data))
		if err != nil {
			slog.Error("Failed to parse feed, skipping", "url", feed.URL, "error", err)
			stats.Failed++
			continue
		}

		source := cmp.Or(feed.Name, parsed.Title, feed.URL)

		for _, entry := range parsed.Items {
			// url is the natural key and title must be non-empty text;
			// entries missing either cannot become records
			if entry.Link == "" || entry.Title == "" {
				stats.Skipped++
				continue
			}

			items = append(items, RawItem{
				URL:         entry.Link,
				Title:       entry.Title,
				Text:        a.extractor.Run(cmp.Or(entry.Description, entry.Content)),
				Source:      source,
				ContentType: content.TypeArticle,
				PublishedAt: entry.PublishedParsed,
			})
		}
	}

	return items, stats, nil
}
