package discovery

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/david/opportunity-scout/internal/models"
)

// RSSAdapter consumes syndication feeds. A source either lists literal feed
// URLs or a feed_template expanded once per configured query (Upwork's
// search feeds work that way).
type RSSAdapter struct {
	adapterBase
	fetcher *HTTPFetcher
	parser  *gofeed.Parser
}

func NewRSSAdapter(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) *RSSAdapter {
	return &RSSAdapter{
		adapterBase: newAdapterBase(cfg, cache),
		fetcher:     fetcher,
		parser:      gofeed.NewParser(),
	}
}

func (a *RSSAdapter) feedURLs() []string {
	if a.cfg.FeedTemplate == "" {
		return a.cfg.Feeds
	}
	urls := make([]string, 0, len(a.cfg.Queries))
	for _, q := range a.cfg.Queries {
		urls = append(urls, fmt.Sprintf(a.cfg.FeedTemplate, url.QueryEscape(q)))
	}
	return urls
}

func (a *RSSAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	var raws []rawItem
	for _, feedURL := range a.feedURLs() {
		doc, err := a.fetcher.Fetch(ctx, feedURL, map[string]string{"Accept": "application/rss+xml, application/xml"})
		if err != nil {
			if ctx.Err() != nil {
				return a.buildAll(ctx, profile, raws), ctx.Err()
			}
			a.log.WithError(err).Warnf("feed fetch failed: %s", feedURL)
			continue
		}

		feed, err := a.parser.Parse(doc.Body)
		doc.Body.Close()
		if err != nil {
			a.log.WithError(err).Warnf("feed parse failed: %s", feedURL)
			continue
		}

		for _, item := range feed.Items {
			if item == nil {
				continue
			}
			raw := rawItem{
				NativeID:  item.GUID,
				Title:     item.Title,
				Body:      item.Description,
				URL:       item.Link,
				Timestamp: item.Published,
			}
			if item.PublishedParsed != nil {
				raw.Timestamp = item.PublishedParsed.UTC().Format(time.RFC3339)
			}
			if len(item.Categories) > 0 {
				raw.Tags = item.Categories
			}
			if item.Author != nil {
				raw.Company = item.Author.Name
			}
			raws = append(raws, raw)
		}
	}

	return a.buildAll(ctx, profile, raws), nil
}
