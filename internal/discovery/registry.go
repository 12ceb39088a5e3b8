package discovery

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all discovery sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SelectorConfig names the structural selectors an HTML-scraped source hangs
// on. Upstream markup changes break here, visibly, instead of producing
// silently wrong records.
type SelectorConfig struct {
	Container string `yaml:"container,omitempty"` // CSS selector for the list item wrapper
	Link      string `yaml:"link,omitempty"`
	Title     string `yaml:"title,omitempty"`
	Summary   string `yaml:"summary,omitempty"`
}

// SourceConfig defines a single discovery source.
type SourceConfig struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Strategy         string `yaml:"strategy"` // "github", "hackernews", "reddit", "json_listing", "rss", "html", "stub"
	Enabled          bool   `yaml:"enabled"`
	BaseURL          string `yaml:"base_url,omitempty"`
	TokenEnv         string `yaml:"token_env,omitempty"` // env var holding a bearer credential, if any
	TimeoutSeconds   int    `yaml:"timeout_seconds,omitempty"`
	RateLimitPerHour int    `yaml:"rate_limit_per_hour,omitempty"` // advisory
	MinValue         int64  `yaml:"min_value,omitempty"`
	MaxItems         int    `yaml:"max_items,omitempty"` // per sub-feed candidate bound

	// Relevance filtering. Empty keywords means "accept everything".
	Keywords []string `yaml:"keywords,omitempty"`

	// Strategy-specific knobs.
	Queries      []string       `yaml:"queries,omitempty"`       // github searches / feed template expansions
	Subreddits   []string       `yaml:"subreddits,omitempty"`    // reddit
	Feeds        []string       `yaml:"feeds,omitempty"`         // rss: literal feed URLs
	FeedTemplate string         `yaml:"feed_template,omitempty"` // rss: %s expanded with each query
	ItemsPath    string         `yaml:"items_path,omitempty"`    // json_listing: "" (top-level array) or key of the array
	Type         string         `yaml:"type,omitempty"`          // opportunity type tag to emit
	Selectors    SelectorConfig `yaml:"selectors,omitempty"`     // html
}

// Timeout returns the per-invocation deadline for this source.
func (c SourceConfig) Timeout() int {
	if c.TimeoutSeconds > 0 {
		return c.TimeoutSeconds
	}
	return 30
}

// Token resolves the source's bearer credential, empty when unset; missing
// credentials degrade the adapter to unauthenticated mode rather than fail it.
func (c SourceConfig) Token() string {
	if c.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.TokenEnv)
}

// LoadRegistry reads the source registry. A non-empty path overrides the
// embedded sources.yaml with a local file.
func LoadRegistry(path string) (*Registry, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = sourcesYAML.ReadFile("config/sources.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources registry: %w", err)
	}

	// Expand environment variables within the YAML content (e.g. ${SCOUT_UA}).
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("failed to parse sources registry: %w", err)
	}
	return &reg, nil
}

// Lookup finds a source by ID.
func (r *Registry) Lookup(id string) (SourceConfig, bool) {
	for _, src := range r.Sources {
		if src.ID == id {
			return src, true
		}
	}
	return SourceConfig{}, false
}

// EnabledIDs returns the IDs of all enabled sources in registration order.
func (r *Registry) EnabledIDs() []string {
	var ids []string
	for _, src := range r.Sources {
		if src.Enabled {
			ids = append(ids, src.ID)
		}
	}
	return ids
}
