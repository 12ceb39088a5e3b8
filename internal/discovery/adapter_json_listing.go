package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/david/opportunity-scout/internal/models"
)

// JSONListingAdapter handles the "one GET returns everything" job boards:
// Remote OK (top-level array, first element is API metadata), Remotive
// (array under a "jobs" key) and DEV listings (top-level array). The shape
// differences are absorbed by decoding into loose maps and probing the
// field aliases each board uses.
type JSONListingAdapter struct {
	adapterBase
	fetcher *HTTPFetcher
}

func NewJSONListingAdapter(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) *JSONListingAdapter {
	return &JSONListingAdapter{
		adapterBase: newAdapterBase(cfg, cache),
		fetcher:     fetcher,
	}
}

func (a *JSONListingAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	var items []map[string]json.RawMessage

	if a.cfg.ItemsPath == "" {
		if err := a.fetcher.FetchJSON(ctx, a.cfg.BaseURL, nil, &items); err != nil {
			return nil, fmt.Errorf("fetching listings: %w", err)
		}
	} else {
		var envelope map[string]json.RawMessage
		if err := a.fetcher.FetchJSON(ctx, a.cfg.BaseURL, nil, &envelope); err != nil {
			return nil, fmt.Errorf("fetching listings: %w", err)
		}
		inner, ok := envelope[a.cfg.ItemsPath]
		if !ok {
			return nil, fmt.Errorf("response has no %q array", a.cfg.ItemsPath)
		}
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("decoding %q array: %w", a.cfg.ItemsPath, err)
		}
	}

	var raws []rawItem
	for _, item := range items {
		raw, ok := a.toRaw(item)
		if !ok {
			continue
		}
		raws = append(raws, raw)
	}
	a.log.Infof("parsed %d of %d listings", len(raws), len(items))

	return a.buildAll(ctx, profile, raws), nil
}

// toRaw maps one listing object to a rawItem. Returns false for entries that
// carry no title, which also skips Remote OK's leading metadata element.
func (a *JSONListingAdapter) toRaw(item map[string]json.RawMessage) (rawItem, bool) {
	title := jsonString(item, "title", "position")
	if title == "" {
		return rawItem{}, false
	}

	raw := rawItem{
		NativeID:  jsonString(item, "id", "slug"),
		Title:     title,
		Body:      jsonString(item, "description", "body_markdown"),
		URL:       jsonString(item, "url", "apply_url"),
		Timestamp: jsonString(item, "date", "publication_date", "published_at"),
		Company:   jsonString(item, "company", "company_name", "organization"),
		Category:  jsonString(item, "category", "job_type"),
	}

	var tags []string
	if rawTags, ok := item["tags"]; ok {
		_ = json.Unmarshal(rawTags, &tags)
	}
	raw.Tags = tags

	// Remote OK exposes numeric salary bounds; Remotive a free-text salary
	// string. Either one counts as a platform-supplied value.
	minSalary := jsonNumber(item, "salary_min")
	maxSalary := jsonNumber(item, "salary_max")
	switch {
	case minSalary > 0 && maxSalary > 0:
		raw.PlatformValue = (minSalary + maxSalary) / 2
		raw.HasPlatformValue = true
	case maxSalary > 0:
		raw.PlatformValue = maxSalary
		raw.HasPlatformValue = true
	case minSalary > 0:
		raw.PlatformValue = minSalary
		raw.HasPlatformValue = true
	default:
		if salary := jsonString(item, "salary"); salary != "" {
			if v, ok := ExtractBudgetDetail(salary); ok {
				raw.PlatformValue = v
				raw.HasPlatformValue = true
			}
		}
	}

	return raw, true
}

// jsonString returns the first present key decoded as a string. Numeric IDs
// are stringified so boards that send `"id": 12345` still work.
func jsonString(item map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		data, ok := item[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// jsonNumber decodes a numeric field, tolerating string-wrapped numbers.
func jsonNumber(item map[string]json.RawMessage, key string) int64 {
	data, ok := item[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return int64(f)
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int64(v)
		}
	}
	return 0
}
