package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/david/opportunity-scout/internal/models"
)

// GitHubAdapter searches open issues via the GitHub search API. An auth token
// is optional; without one GitHub allows 10 search requests per minute, which
// covers the configured query list.
type GitHubAdapter struct {
	adapterBase
	fetcher *HTTPFetcher
}

func NewGitHubAdapter(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) *GitHubAdapter {
	return &GitHubAdapter{
		adapterBase: newAdapterBase(cfg, cache),
		fetcher:     fetcher,
	}
}

type githubSearchResponse struct {
	TotalCount int           `json:"total_count"`
	Items      []githubIssue `json:"items"`
}

type githubIssue struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	HTMLURL   string `json:"html_url"`
	CreatedAt string `json:"created_at"`
	Labels    []struct {
		Name string `json:"name"`
	} `json:"labels"`
	RepositoryURL string `json:"repository_url"`
}

func (a *GitHubAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token := a.cfg.Token(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	queries := a.queries(profile)
	var raws []rawItem
	for _, query := range queries {
		searchURL := fmt.Sprintf("%s/search/issues?q=%s&sort=created&order=desc&per_page=%d",
			a.cfg.BaseURL, url.QueryEscape(query), a.cfg.MaxItems)

		var resp githubSearchResponse
		if err := a.fetcher.FetchJSON(ctx, searchURL, headers, &resp); err != nil {
			if ctx.Err() != nil {
				return a.buildAll(ctx, profile, raws), ctx.Err()
			}
			a.log.WithError(err).Warnf("search failed for query %q", query)
			continue
		}
		a.log.Infof("query %q matched %d issues", query, resp.TotalCount)

		for _, issue := range resp.Items {
			tags := make([]string, 0, len(issue.Labels))
			for _, l := range issue.Labels {
				tags = append(tags, l.Name)
			}
			raws = append(raws, rawItem{
				NativeID:  strconv.FormatInt(issue.ID, 10),
				Title:     issue.Title,
				Body:      issue.Body,
				URL:       issue.HTMLURL,
				Timestamp: issue.CreatedAt,
				Company:   repoOwner(issue.RepositoryURL),
				Tags:      tags,
			})
		}
	}

	return a.buildAll(ctx, profile, raws), nil
}

// queries expands the configured searches with the caller's skills so results
// lean toward work they can actually take on.
func (a *GitHubAdapter) queries(profile Profile) []string {
	if len(profile.Skills) == 0 {
		return a.cfg.Queries
	}
	qualifier := strings.Join(profile.Skills[:min(len(profile.Skills), 3)], " OR ")
	queries := make([]string, 0, len(a.cfg.Queries))
	for _, q := range a.cfg.Queries {
		queries = append(queries, q+" "+qualifier)
	}
	return queries
}

// repoOwner pulls the owner segment out of an API repository URL, e.g.
// https://api.github.com/repos/acme/widgets -> "acme".
func repoOwner(repoURL string) string {
	parts := strings.Split(repoURL, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return ""
}
