package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/david/opportunity-scout/internal/models"
)

func TestBuildNormalizesAndDedupes(t *testing.T) {
	cache := NewMemoryCache(DefaultCacheTTL)
	base := newAdapterBase(SourceConfig{ID: "board", Type: "remote_job"}, cache)
	ctx := context.Background()

	raw := rawItem{
		NativeID: "42",
		Title:    "  Senior   Go Engineer ",
		Body:     "<p>Budget is <b>$2,000 - $4,000</b> for the project.</p>",
		URL:      "https://example.com/jobs/42",
	}

	opp, ok := base.build(ctx, Profile{}, raw)
	if !ok {
		t.Fatal("first build should produce a record")
	}
	if opp.ID != "board_42" {
		t.Errorf("ID = %q, want board_42", opp.ID)
	}
	if opp.Title != "Senior Go Engineer" {
		t.Errorf("Title = %q, whitespace should collapse", opp.Title)
	}
	if strings.Contains(opp.Description, "<") {
		t.Errorf("Description still contains markup: %q", opp.Description)
	}
	if opp.EstimatedValue != 3000 {
		t.Errorf("EstimatedValue = %d, want 3000 (range midpoint)", opp.EstimatedValue)
	}
	if opp.ValueBasis != models.ValueBasisText {
		t.Errorf("ValueBasis = %q, want text", opp.ValueBasis)
	}

	if _, ok := base.build(ctx, Profile{}, raw); ok {
		t.Error("second build of the same native ID should be suppressed")
	}
}

func TestBuildPlatformValueWins(t *testing.T) {
	base := newAdapterBase(SourceConfig{ID: "board"}, nil)

	raw := rawItem{
		NativeID:         "7",
		Title:            "Backend role",
		Body:             "pays $100 per hour they say",
		URL:              "https://example.com/7",
		PlatformValue:    90000,
		HasPlatformValue: true,
	}
	opp, ok := base.build(context.Background(), Profile{}, raw)
	if !ok {
		t.Fatal("expected a record")
	}
	if opp.EstimatedValue != 90000 || opp.ValueBasis != models.ValueBasisPlatform {
		t.Errorf("got value=%d basis=%q, platform figure should win over text", opp.EstimatedValue, opp.ValueBasis)
	}
}

func TestBuildDefaultValueWhenNothingInferable(t *testing.T) {
	base := newAdapterBase(SourceConfig{ID: "board"}, nil)

	opp, ok := base.build(context.Background(), Profile{}, rawItem{
		NativeID: "9",
		Title:    "Help wanted on a small tool",
		URL:      "https://example.com/9",
	})
	if !ok {
		t.Fatal("expected a record")
	}
	if opp.EstimatedValue != DefaultEstimatedValue || opp.ValueBasis != models.ValueBasisDefault {
		t.Errorf("got value=%d basis=%q, want nominal default", opp.EstimatedValue, opp.ValueBasis)
	}
}

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SourceConfig
		profile Profile
		raw     rawItem
		want    bool
	}{
		{
			name: "keyword filter rejects off-topic",
			cfg:  SourceConfig{ID: "s", Keywords: []string{"hiring", "freelance"}},
			raw:  rawItem{NativeID: "1", Title: "My vacation photos", URL: "https://x/1"},
			want: false,
		},
		{
			name: "keyword filter matches body",
			cfg:  SourceConfig{ID: "s", Keywords: []string{"hiring"}},
			raw:  rawItem{NativeID: "2", Title: "Announcement", Body: "We are hiring a contractor", URL: "https://x/2"},
			want: true,
		},
		{
			name:    "caller min value floor",
			cfg:     SourceConfig{ID: "s"},
			profile: Profile{MinValue: 1000},
			raw:     rawItem{NativeID: "3", Title: "Small fix for $200", URL: "https://x/3"},
			want:    false,
		},
		{
			name: "source min value floor",
			cfg:  SourceConfig{ID: "s", MinValue: 5000},
			raw:  rawItem{NativeID: "4", Title: "Gig paying $3000", URL: "https://x/4"},
			want: false,
		},
		{
			name: "missing title dropped",
			cfg:  SourceConfig{ID: "s"},
			raw:  rawItem{NativeID: "5", URL: "https://x/5"},
			want: false,
		},
		{
			name: "missing URL dropped",
			cfg:  SourceConfig{ID: "s"},
			raw:  rawItem{NativeID: "6", Title: "Something"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := newAdapterBase(tt.cfg, nil)
			_, ok := base.build(context.Background(), tt.profile, tt.raw)
			if ok != tt.want {
				t.Errorf("build accepted=%v, want %v", ok, tt.want)
			}
		})
	}
}

func TestBuildSynthesizesNativeID(t *testing.T) {
	base := newAdapterBase(SourceConfig{ID: "s"}, nil)
	opp, ok := base.build(context.Background(), Profile{}, rawItem{
		Title: "Listing without an ID",
		URL:   "https://example.com/listing",
	})
	if !ok {
		t.Fatal("expected a record")
	}
	if opp.NativeID != ContentHash("https://example.com/listing") {
		t.Errorf("NativeID = %q, want hash of URL", opp.NativeID)
	}
}

func TestBuildAllHonorsMaxItems(t *testing.T) {
	base := newAdapterBase(SourceConfig{ID: "s", MaxItems: 2}, nil)
	raws := []rawItem{
		{NativeID: "1", Title: "a", URL: "https://x/1"},
		{NativeID: "2", Title: "b", URL: "https://x/2"},
		{NativeID: "3", Title: "c", URL: "https://x/3"},
	}
	opps := base.buildAll(context.Background(), Profile{}, raws)
	if len(opps) != 2 {
		t.Errorf("got %d records, want max_items bound of 2", len(opps))
	}
}
