package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/david/opportunity-scout/internal/models"
)

// rawItem is what an adapter extracts from one upstream record before
// normalization. PlatformValue is honored only when HasPlatformValue is set;
// a platform can legitimately report zero.
type rawItem struct {
	NativeID         string
	Title            string
	Body             string
	URL              string
	Timestamp        string
	Company          string
	Subreddit        string
	Category         string
	Tags             []string
	PlatformValue    int64
	HasPlatformValue bool
}

// adapterBase carries the per-source configuration and shared normalization
// pipeline every adapter funnels its raw items through.
type adapterBase struct {
	cfg   SourceConfig
	cache Cache
	log   *logrus.Entry
}

func newAdapterBase(cfg SourceConfig, cache Cache) adapterBase {
	return adapterBase{
		cfg:   cfg,
		cache: cache,
		log:   logrus.WithField("source", cfg.ID),
	}
}

func (b *adapterBase) Source() string { return b.cfg.ID }

// accept applies the source's keyword filter and the caller's value floor.
func (b *adapterBase) accept(raw rawItem, profile Profile, value int64) bool {
	text := strings.ToLower(raw.Title + " " + raw.Body)
	if !containsAnyKeyword(text, b.cfg.Keywords) {
		return false
	}
	min := profile.MinValue
	if b.cfg.MinValue > min {
		min = b.cfg.MinValue
	}
	return value >= min
}

// build normalizes one raw item into an Opportunity, consulting the dedup
// cache. The second return is false when the item is filtered out, a
// duplicate, or structurally unusable.
func (b *adapterBase) build(ctx context.Context, profile Profile, raw rawItem) (models.Opportunity, bool) {
	if raw.Title == "" || raw.URL == "" {
		return models.Opportunity{}, false
	}
	if raw.NativeID == "" {
		raw.NativeID = ContentHash(raw.URL)
	}

	if b.cache != nil && b.cache.Seen(ctx, b.cfg.ID, raw.NativeID) {
		return models.Opportunity{}, false
	}

	value := raw.PlatformValue
	basis := models.ValueBasisPlatform
	if !raw.HasPlatformValue {
		var fromText bool
		value, fromText = ExtractBudgetDetail(raw.Title + " " + raw.Body)
		basis = models.ValueBasisText
		if !fromText {
			basis = models.ValueBasisDefault
		}
	}

	if !b.accept(raw, profile, value) {
		return models.Opportunity{}, false
	}

	opp := models.Opportunity{
		ID:             OpportunityID(b.cfg.ID, raw.NativeID),
		Source:         b.cfg.ID,
		NativeID:       raw.NativeID,
		Title:          cleanText(raw.Title),
		Description:    NormalizeDescription(raw.Body),
		URL:            raw.URL,
		Type:           b.cfg.Type,
		EstimatedValue: value,
		ValueBasis:     basis,
		CreatedAt:      NormalizeTimestamp(raw.Timestamp, time.Now()),
		MatchScore:     MatchScore(raw.Title, raw.Body, profile),
		Company:        raw.Company,
		Subreddit:      raw.Subreddit,
		Category:       raw.Category,
		Tags:           raw.Tags,
		DiscoveredAt:   time.Now().UTC(),
	}

	if b.cache != nil {
		b.cache.Mark(ctx, b.cfg.ID, raw.NativeID)
	}
	return opp, true
}

// buildAll runs build over a batch, stopping at the source's max_items bound.
func (b *adapterBase) buildAll(ctx context.Context, profile Profile, raws []rawItem) []models.Opportunity {
	var opps []models.Opportunity
	for _, raw := range raws {
		if b.cfg.MaxItems > 0 && len(opps) >= b.cfg.MaxItems {
			break
		}
		if opp, ok := b.build(ctx, profile, raw); ok {
			opps = append(opps, opp)
		}
	}
	return opps
}
