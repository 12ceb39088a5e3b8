package discovery

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/david/opportunity-scout/internal/models"
)

// RedditAdapter reads new submissions from the configured subreddits through
// the public JSON listing endpoints. Reddit throttles anonymous clients hard,
// so subreddit fetches are paced and a descriptive User-Agent is mandatory.
type RedditAdapter struct {
	adapterBase
	fetcher *HTTPFetcher
	limiter *rate.Limiter
}

func NewRedditAdapter(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) *RedditAdapter {
	return &RedditAdapter{
		adapterBase: newAdapterBase(cfg, cache),
		fetcher:     fetcher,
		limiter:     rate.NewLimiter(rate.Limit(1), 1),
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}

func (a *RedditAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	headers := map[string]string{"User-Agent": a.fetcher.UserAgent}

	var raws []rawItem
	for _, sub := range a.cfg.Subreddits {
		if err := a.limiter.Wait(ctx); err != nil {
			return a.buildAll(ctx, profile, raws), err
		}

		listURL := fmt.Sprintf("%s/r/%s/new.json?limit=25", a.cfg.BaseURL, sub)
		var listing redditListing
		if err := a.fetcher.FetchJSON(ctx, listURL, headers, &listing); err != nil {
			if ctx.Err() != nil {
				return a.buildAll(ctx, profile, raws), ctx.Err()
			}
			a.log.WithError(err).Warnf("r/%s fetch failed", sub)
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			if post.Stickied {
				continue
			}
			raws = append(raws, rawItem{
				NativeID:  post.ID,
				Title:     post.Title,
				Body:      post.SelfText,
				URL:       "https://www.reddit.com" + post.Permalink,
				Timestamp: strconv.FormatInt(int64(post.CreatedUTC), 10),
				Subreddit: post.Subreddit,
				Company:   post.Author,
			})
		}
	}

	return a.buildAll(ctx, profile, raws), nil
}
