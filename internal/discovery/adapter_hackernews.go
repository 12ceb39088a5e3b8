package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/david/opportunity-scout/internal/models"
)

// hnInterestingPrefixes marks the story flavors worth surfacing. Plain
// front-page links are news, not opportunities.
var hnInterestingPrefixes = []string{
	"show hn:",
	"ask hn:",
	"tell hn:",
}

// HackerNewsAdapter reads the Firebase-backed Hacker News API: fetch the top
// story ID list, then each item individually. Item fetches are paced with a
// rate limiter since the API has no batch endpoint.
type HackerNewsAdapter struct {
	adapterBase
	fetcher *HTTPFetcher
	limiter *rate.Limiter
}

func NewHackerNewsAdapter(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) *HackerNewsAdapter {
	return &HackerNewsAdapter{
		adapterBase: newAdapterBase(cfg, cache),
		fetcher:     fetcher,
		limiter:     rate.NewLimiter(rate.Limit(10), 5),
	}
}

type hnItem struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Time  int64  `json:"time"` // unix seconds
	By    string `json:"by"`
	Dead  bool   `json:"dead"`
}

func (a *HackerNewsAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	var ids []int64
	listURL := a.cfg.BaseURL + "/topstories.json"
	if err := a.fetcher.FetchJSON(ctx, listURL, nil, &ids); err != nil {
		return nil, fmt.Errorf("fetching story list: %w", err)
	}

	// Examine more stories than we intend to keep; most won't qualify.
	candidates := a.cfg.MaxItems * 4
	if candidates > len(ids) {
		candidates = len(ids)
	}

	var raws []rawItem
	for _, id := range ids[:candidates] {
		if err := a.limiter.Wait(ctx); err != nil {
			return a.buildAll(ctx, profile, raws), err
		}

		var item hnItem
		itemURL := fmt.Sprintf("%s/item/%d.json", a.cfg.BaseURL, id)
		if err := a.fetcher.FetchJSON(ctx, itemURL, nil, &item); err != nil {
			if ctx.Err() != nil {
				return a.buildAll(ctx, profile, raws), ctx.Err()
			}
			a.log.WithError(err).Warnf("item %d fetch failed", id)
			continue
		}
		if item.Dead || item.Type != "story" || !interestingHNTitle(item.Title) {
			continue
		}

		link := item.URL
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
		}
		raws = append(raws, rawItem{
			NativeID:  strconv.FormatInt(item.ID, 10),
			Title:     item.Title,
			Body:      item.Text,
			URL:       link,
			Timestamp: strconv.FormatInt(item.Time, 10),
			Company:   item.By,
		})
	}

	return a.buildAll(ctx, profile, raws), nil
}

func interestingHNTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, prefix := range hnInterestingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return containsAnyKeyword(lower, defaultHiringKeywords)
}
