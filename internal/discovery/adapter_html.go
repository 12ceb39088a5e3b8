package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/david/opportunity-scout/internal/models"
)

// HTMLAdapter scrapes selector-driven listing pages (Indie Hackers, BetaList)
// with colly. Selectors live in the registry so a markup change is a config
// edit, not a code change.
type HTMLAdapter struct {
	adapterBase
	userAgent string
}

func NewHTMLAdapter(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) *HTMLAdapter {
	return &HTMLAdapter{
		adapterBase: newAdapterBase(cfg, cache),
		userAgent:   fetcher.UserAgent,
	}
}

func (a *HTMLAdapter) collector(host string) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(a.userAgent),
		colly.AllowedDomains(host),
		colly.MaxBodySize(10<<20),
		colly.DetectCharset(),
		colly.AllowURLRevisit(),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       time.Second,
		RandomDelay: 500 * time.Millisecond,
	})
	c.SetRequestTimeout(time.Duration(a.cfg.Timeout()) * time.Second)
	return c
}

func (a *HTMLAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	sel := a.cfg.Selectors
	if sel.Container == "" {
		return nil, fmt.Errorf("source %s has no container selector", a.cfg.ID)
	}

	parsed, err := url.Parse(a.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var raws []rawItem
	var scrapeErr error
	// Hostname, not Host: colly compares allowed domains against the
	// request URL's hostname, so a port here would block every visit.
	c := a.collector(parsed.Hostname())

	c.OnHTML(sel.Container, func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText(sel.Title))
		if title == "" {
			title = strings.TrimSpace(e.Text)
		}

		link := e.ChildAttr(sel.Link, "href")
		if link == "" {
			link = e.Attr("href")
		}
		if link != "" && !strings.HasPrefix(link, "http") {
			link = e.Request.AbsoluteURL(link)
		}

		summary := ""
		if sel.Summary != "" {
			summary = strings.TrimSpace(e.ChildText(sel.Summary))
		}

		if title == "" || link == "" {
			return
		}
		raws = append(raws, rawItem{
			NativeID: ContentHash(link),
			Title:    title,
			Body:     summary,
			URL:      link,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
	})

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
		}
	})

	if err := c.Visit(a.cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("visit failed: %w", err)
	}
	c.Wait()

	if ctx.Err() != nil {
		return a.buildAll(ctx, profile, raws), ctx.Err()
	}
	if scrapeErr != nil && len(raws) == 0 {
		return nil, fmt.Errorf("scrape failed: %w", scrapeErr)
	}
	a.log.Infof("scraped %d items", len(raws))

	return a.buildAll(ctx, profile, raws), nil
}
