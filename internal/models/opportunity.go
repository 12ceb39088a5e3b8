package models

import "time"

// Value basis indicates where an opportunity's estimated value came from.
const (
	ValueBasisPlatform = "platform" // source supplied an explicit budget/salary
	ValueBasisText     = "text"     // inferred from free text by the budget extractor
	ValueBasisDefault  = "default"  // nominal placeholder, nothing could be inferred
)

// Opportunity is the canonical record for one discovered external work
// possibility. Once constructed it is never mutated; corrections happen by
// emitting a new record in a later discovery run.
type Opportunity struct {
	ID             string `json:"id"` // "{source}_{native_id}", unique per run
	Source         string `json:"source"`
	NativeID       string `json:"native_id"`
	Title          string `json:"title"`
	Description    string `json:"description"` // plain text, truncated to 500 chars
	URL            string `json:"url"`
	Type           string `json:"type"` // e.g. "bounty", "freelance_gig", "remote_job"
	EstimatedValue int64  `json:"estimated_value"`
	ValueBasis     string `json:"value_basis"`
	CreatedAt      string `json:"created_at"` // ISO-8601, platform-supplied or fetch time
	MatchScore     int    `json:"match_score"`

	// Source-specific extras, advisory only.
	Company   string   `json:"company,omitempty"`
	Subreddit string   `json:"subreddit,omitempty"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	DiscoveredAt time.Time `json:"discovered_at"`
}
