package discovery

import "fmt"

// AdapterConstructor builds an adapter from a source's registry entry.
type AdapterConstructor func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter

// StrategyFactory maps strategy IDs (from sources.yaml) to adapter
// constructors.
type StrategyFactory struct {
	constructors map[string]AdapterConstructor
}

func NewStrategyFactory() *StrategyFactory {
	return &StrategyFactory{
		constructors: make(map[string]AdapterConstructor),
	}
}

func (f *StrategyFactory) Register(id string, ctor AdapterConstructor) {
	f.constructors[id] = ctor
}

func (f *StrategyFactory) Build(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) (Adapter, error) {
	ctor, ok := f.constructors[cfg.Strategy]
	if !ok {
		return nil, fmt.Errorf("strategy not found: %s", cfg.Strategy)
	}
	return ctor(cfg, fetcher, cache), nil
}

// Global factory instance
var GlobalStrategyFactory = NewStrategyFactory()

func init() {
	GlobalStrategyFactory.Register("github", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewGitHubAdapter(cfg, fetcher, cache)
	})
	GlobalStrategyFactory.Register("hackernews", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewHackerNewsAdapter(cfg, fetcher, cache)
	})
	GlobalStrategyFactory.Register("reddit", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewRedditAdapter(cfg, fetcher, cache)
	})
	GlobalStrategyFactory.Register("json_listing", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewJSONListingAdapter(cfg, fetcher, cache)
	})
	GlobalStrategyFactory.Register("rss", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewRSSAdapter(cfg, fetcher, cache)
	})
	GlobalStrategyFactory.Register("html", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewHTMLAdapter(cfg, fetcher, cache)
	})
	GlobalStrategyFactory.Register("stub", func(cfg SourceConfig, fetcher *HTTPFetcher, cache Cache) Adapter {
		return NewStubAdapter(cfg, cache)
	})
}
