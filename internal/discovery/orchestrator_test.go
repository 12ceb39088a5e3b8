package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/david/opportunity-scout/internal/models"
)

type fakeAdapter struct {
	id      string
	opps    []models.Opportunity
	err     error
	panics  bool
	blocked bool // wait for ctx cancellation, then return opps as partials
}

func (f *fakeAdapter) Source() string { return f.id }

func (f *fakeAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	if f.panics {
		panic("adapter exploded")
	}
	if f.blocked {
		<-ctx.Done()
		return f.opps, ctx.Err()
	}
	return f.opps, f.err
}

func fakeOpp(source, nativeID string, value int64) models.Opportunity {
	return models.Opportunity{
		ID:             OpportunityID(source, nativeID),
		Source:         source,
		NativeID:       nativeID,
		Title:          "test opportunity " + nativeID,
		URL:            "https://example.com/" + nativeID,
		EstimatedValue: value,
		ValueBasis:     models.ValueBasisDefault,
	}
}

func testEngine(adapters ...*fakeAdapter) *Engine {
	e := &Engine{
		registry: &Registry{},
		adapters: make(map[string]Adapter),
	}
	for _, a := range adapters {
		e.adapters[a.id] = a
		e.order = append(e.order, a.id)
		e.registry.Sources = append(e.registry.Sources, SourceConfig{
			ID:             a.id,
			Strategy:       "stub",
			Enabled:        true,
			TimeoutSeconds: 2,
		})
	}
	return e
}

func TestDiscoverIsolatesSourceFailures(t *testing.T) {
	alpha := &fakeAdapter{id: "alpha", opps: []models.Opportunity{
		fakeOpp("alpha", "1", 500),
		fakeOpp("alpha", "2", 1500),
		fakeOpp("alpha", "3", 1000),
	}}
	beta := &fakeAdapter{id: "beta", err: errors.New("upstream 503")}
	gamma := &fakeAdapter{id: "gamma"}
	delta := &fakeAdapter{id: "delta", panics: true}

	e := testEngine(alpha, beta, gamma, delta)
	res := e.Discover(context.Background(), "tester", Profile{}, nil)

	if !res.OK {
		t.Error("run should complete despite per-source failures")
	}
	if res.TotalFound != 3 {
		t.Errorf("TotalFound = %d, want 3", res.TotalFound)
	}
	if res.TotalEstimatedValue != 3000 {
		t.Errorf("TotalEstimatedValue = %d, want 3000", res.TotalEstimatedValue)
	}
	if res.RunID == "" {
		t.Error("expected a run ID")
	}

	if got := res.BySource["alpha"]; got.Count != 3 || got.Error != "" {
		t.Errorf("alpha result = %+v, want 3 clean results", got)
	}
	if got := res.BySource["beta"]; got.Error != "upstream 503" {
		t.Errorf("beta error = %q, want upstream 503", got.Error)
	}
	if got := res.BySource["gamma"]; got.Count != 0 || got.Error != "" {
		t.Errorf("gamma result = %+v, want clean empty", got)
	}
	if got := res.BySource["delta"]; got.Error == "" {
		t.Error("delta panic should surface as a per-source error")
	}

	want := []string{"alpha", "gamma"}
	if len(res.SourcesScraped) != len(want) {
		t.Fatalf("SourcesScraped = %v, want %v", res.SourcesScraped, want)
	}
	for i, id := range want {
		if res.SourcesScraped[i] != id {
			t.Errorf("SourcesScraped[%d] = %q, want %q", i, res.SourcesScraped[i], id)
		}
	}
}

func TestDiscoverSourceTimeout(t *testing.T) {
	slow := &fakeAdapter{id: "slow", blocked: true, opps: []models.Opportunity{
		fakeOpp("slow", "partial", 500),
	}}
	fast := &fakeAdapter{id: "fast", opps: []models.Opportunity{
		fakeOpp("fast", "1", 800),
	}}

	e := testEngine(slow, fast)
	// Tighten the slow source's deadline so the test doesn't crawl.
	for i := range e.registry.Sources {
		e.registry.Sources[i].TimeoutSeconds = 1
	}

	res := e.Discover(context.Background(), "tester", Profile{}, nil)

	sr := res.BySource["slow"]
	if !sr.TimedOut {
		t.Fatalf("slow source should report timed_out, got %+v", sr)
	}
	if sr.Count != 1 {
		t.Errorf("partial results before the deadline should be kept, got %d", sr.Count)
	}
	if fastRes := res.BySource["fast"]; fastRes.TimedOut || fastRes.Error != "" {
		t.Errorf("fast source should be unaffected, got %+v", fastRes)
	}
	if res.TotalFound != 2 {
		t.Errorf("TotalFound = %d, want 2 (partial + fast)", res.TotalFound)
	}
}

func TestDiscoverSubsetAndUnknownSources(t *testing.T) {
	alpha := &fakeAdapter{id: "alpha", opps: []models.Opportunity{fakeOpp("alpha", "1", 500)}}
	beta := &fakeAdapter{id: "beta", opps: []models.Opportunity{fakeOpp("beta", "1", 500)}}

	e := testEngine(alpha, beta)
	res := e.Discover(context.Background(), "tester", Profile{}, []string{"alpha", "nosuch"})

	if res.TotalFound != 1 {
		t.Errorf("TotalFound = %d, want 1", res.TotalFound)
	}
	if _, ok := res.BySource["beta"]; ok {
		t.Error("beta was not requested and should not appear")
	}
	if got := res.BySource["nosuch"]; got.Error != "unknown source" {
		t.Errorf("unknown source error = %q", got.Error)
	}
}

func TestDiscoverUnknownSourcesInterleaved(t *testing.T) {
	// Many fast adapters interleaved with unknown IDs. Under the race
	// detector this covers BySource writes from the main goroutine and the
	// adapter goroutines overlapping.
	var adapters []*fakeAdapter
	var requested []string
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("src%02d", i)
		adapters = append(adapters, &fakeAdapter{id: id, opps: []models.Opportunity{fakeOpp(id, "1", 100)}})
		requested = append(requested, id, fmt.Sprintf("ghost%02d", i))
	}

	e := testEngine(adapters...)
	res := e.Discover(context.Background(), "tester", Profile{}, requested)

	if res.TotalFound != 50 {
		t.Errorf("TotalFound = %d, want 50", res.TotalFound)
	}
	if len(res.BySource) != 100 {
		t.Fatalf("BySource has %d entries, want 100", len(res.BySource))
	}
	for i := 0; i < 50; i++ {
		if got := res.BySource[fmt.Sprintf("ghost%02d", i)]; got.Error != "unknown source" {
			t.Fatalf("ghost%02d error = %q, want unknown source", i, got.Error)
		}
	}
	if len(res.SourcesScraped) != 50 {
		t.Errorf("SourcesScraped has %d entries, want 50", len(res.SourcesScraped))
	}
}

type countingRecorder struct {
	runs []*AggregateResult
}

func (r *countingRecorder) RecordRun(ctx context.Context, res *AggregateResult) error {
	r.runs = append(r.runs, res)
	return nil
}

func TestDiscoverRecordsRun(t *testing.T) {
	alpha := &fakeAdapter{id: "alpha", opps: []models.Opportunity{fakeOpp("alpha", "1", 500)}}
	rec := &countingRecorder{}

	e := testEngine(alpha)
	e.recorder = rec

	res := e.Discover(context.Background(), "tester", Profile{}, nil)
	if len(rec.runs) != 1 {
		t.Fatalf("recorder saw %d runs, want 1", len(rec.runs))
	}
	if rec.runs[0].RunID != res.RunID {
		t.Error("recorded run should be the returned aggregate")
	}
}
