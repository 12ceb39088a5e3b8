package discovery

import "testing"

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Sources) == 0 {
		t.Fatal("embedded registry is empty")
	}

	seen := make(map[string]bool)
	for _, src := range reg.Sources {
		if src.ID == "" {
			t.Error("source with empty ID")
		}
		if seen[src.ID] {
			t.Errorf("duplicate source ID %q", src.ID)
		}
		seen[src.ID] = true

		if src.Strategy == "" {
			t.Errorf("source %s has no strategy", src.ID)
		}
		if _, err := GlobalStrategyFactory.Build(src, NewHTTPFetcher(), nil); err != nil {
			t.Errorf("source %s: %v", src.ID, err)
		}
	}

	for _, id := range []string{"github", "hackernews", "reddit", "remoteok", "upwork"} {
		if _, ok := reg.Lookup(id); !ok {
			t.Errorf("expected source %q in registry", id)
		}
	}
}

func TestSourceConfigDefaults(t *testing.T) {
	cfg := SourceConfig{}
	if got := cfg.Timeout(); got != 30 {
		t.Errorf("default timeout = %d, want 30", got)
	}
	if got := cfg.Token(); got != "" {
		t.Errorf("unset token env should resolve empty, got %q", got)
	}
}
