package discovery

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/david/opportunity-scout/internal/models"
)

// Profile describes the caller on whose behalf discovery runs. Adapters use it
// to bias search queries and relevance scoring.
type Profile struct {
	Skills       []string `json:"skills"`
	Keywords     []string `json:"keywords"`
	BusinessType string   `json:"business_type"`
	MinValue     int64    `json:"min_value"`
}

// Adapter is one external platform integration. Fetch must not propagate
// transient failures: network errors, bad status codes and parse failures are
// logged internally and reduce to a shorter (possibly empty) result. A non-nil
// error is reserved for invocation-level problems; the orchestrator treats it
// as a per-source failure and carries on with the other adapters.
type Adapter interface {
	Source() string
	Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error)
}

// Cache gates re-emission of records already surfaced within the TTL window.
// Implementations must be safe for concurrent use; errors on the backend are
// swallowed and fail open (Seen reports false) so a cache outage degrades to
// duplicate emissions rather than lost discoveries.
type Cache interface {
	Seen(ctx context.Context, source, nativeID string) bool
	Mark(ctx context.Context, source, nativeID string)
}

// Recorder persists the outcome of a discovery run. A nil Recorder on the
// Engine disables persistence entirely.
type Recorder interface {
	RecordRun(ctx context.Context, res *AggregateResult) error
}

// SourceResult is the per-source entry in the aggregate breakdown: either a
// count plus opportunities, or an error, or a timed-out marker (possibly with
// the partial results collected before the deadline).
type SourceResult struct {
	Count         int                  `json:"count"`
	Opportunities []models.Opportunity `json:"opportunities,omitempty"`
	Error         string               `json:"error,omitempty"`
	TimedOut      bool                 `json:"timed_out,omitempty"`
}

// AggregateResult is the single payload Discover returns. OK reflects only
// that orchestration completed; per-source health lives in BySource.
type AggregateResult struct {
	OK                  bool                    `json:"ok"`
	RunID               string                  `json:"run_id"`
	Caller              string                  `json:"caller"`
	Opportunities       []models.Opportunity    `json:"opportunities"`
	BySource            map[string]SourceResult `json:"by_source"`
	TotalFound          int                     `json:"total_found"`
	TotalEstimatedValue int64                   `json:"total_estimated_value"`
	SourcesScraped      []string                `json:"sources_scraped"`
	CompletedAt         time.Time               `json:"completed_at"`
}

// FetchedDocument is the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     http.Header
}

// Fetcher retrieves raw content from a URL. Extra headers override the
// client's defaults.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*FetchedDocument, error)
}
