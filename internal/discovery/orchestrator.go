package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/david/opportunity-scout/internal/models"
)

// Engine fans a discovery run out across every enabled source concurrently.
// One misbehaving source never sinks the run: errors, timeouts and panics are
// recorded per source and the rest proceed.
type Engine struct {
	registry *Registry
	fetcher  *HTTPFetcher
	cache    Cache
	recorder Recorder

	adapters map[string]Adapter
	order    []string
}

// NewEngine builds adapters for every enabled source in the registry.
// cache and recorder may be nil to disable dedup and persistence.
func NewEngine(registry *Registry, fetcher *HTTPFetcher, cache Cache, recorder Recorder) (*Engine, error) {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}

	e := &Engine{
		registry: registry,
		fetcher:  fetcher,
		cache:    cache,
		recorder: recorder,
		adapters: make(map[string]Adapter),
	}

	for _, cfg := range registry.Sources {
		if !cfg.Enabled {
			continue
		}
		adapter, err := GlobalStrategyFactory.Build(cfg, fetcher, cache)
		if err != nil {
			return nil, fmt.Errorf("building adapter for %s: %w", cfg.ID, err)
		}
		e.adapters[cfg.ID] = adapter
		e.order = append(e.order, cfg.ID)
	}

	if len(e.adapters) == 0 {
		return nil, errors.New("no enabled sources in registry")
	}
	return e, nil
}

// Sources returns the enabled source IDs in registration order.
func (e *Engine) Sources() []string {
	ids := make([]string, len(e.order))
	copy(ids, e.order)
	return ids
}

// Discover runs all requested sources concurrently and returns the aggregate.
// An empty sources slice means every enabled source. Unknown source IDs are
// reported as per-source errors, not run failures.
func (e *Engine) Discover(ctx context.Context, caller string, profile Profile, sources []string) *AggregateResult {
	if len(sources) == 0 {
		sources = e.order
	}

	res := &AggregateResult{
		OK:            true,
		RunID:         uuid.New().String(),
		Caller:        caller,
		Opportunities: make([]models.Opportunity, 0),
		BySource:      make(map[string]SourceResult, len(sources)),
	}
	log := logrus.WithFields(logrus.Fields{"run_id": res.RunID, "caller": caller})
	log.Infof("starting discovery across %d sources", len(sources))
	started := time.Now()

	// Settle unknown IDs before any goroutine starts so only the adapter
	// goroutines touch BySource concurrently.
	runnable := make([]string, 0, len(sources))
	for _, id := range sources {
		if _, ok := e.adapters[id]; !ok {
			res.BySource[id] = SourceResult{Error: "unknown source"}
			continue
		}
		runnable = append(runnable, id)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, id := range runnable {
		adapter := e.adapters[id]
		cfg, _ := e.registry.Lookup(id)

		g.Go(func() error {
			sr := e.runSource(gctx, adapter, cfg, profile)

			mu.Lock()
			res.BySource[id] = sr
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	// Flatten in registration order so output is stable run to run. Timed-out
	// sources contribute whatever partial results they managed.
	for _, id := range sources {
		sr, ok := res.BySource[id]
		if !ok {
			continue
		}
		res.Opportunities = append(res.Opportunities, sr.Opportunities...)
		for _, opp := range sr.Opportunities {
			res.TotalEstimatedValue += opp.EstimatedValue
		}
		if sr.Error == "" || sr.TimedOut {
			res.SourcesScraped = append(res.SourcesScraped, id)
		}
	}
	res.TotalFound = len(res.Opportunities)
	res.CompletedAt = time.Now().UTC()

	log.WithFields(logrus.Fields{
		"total_found": res.TotalFound,
		"elapsed":     time.Since(started).Round(time.Millisecond).String(),
	}).Info("discovery complete")

	if e.recorder != nil {
		if err := e.recorder.RecordRun(ctx, res); err != nil {
			log.WithError(err).Warn("failed to persist discovery run")
		}
	}
	return res
}

// runSource executes one adapter under its own deadline, converting panics
// and timeouts into the per-source result.
func (e *Engine) runSource(ctx context.Context, adapter Adapter, cfg SourceConfig, profile Profile) (sr SourceResult) {
	tctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout())*time.Second)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("source", cfg.ID).Errorf("adapter panicked: %v", r)
			sr = SourceResult{Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	started := time.Now()
	opps, err := adapter.Fetch(tctx, profile)
	elapsed := time.Since(started).Round(time.Millisecond)

	sr = SourceResult{Count: len(opps), Opportunities: opps}
	switch {
	case errors.Is(tctx.Err(), context.DeadlineExceeded):
		// Partial results gathered before the deadline are kept.
		sr.TimedOut = true
		sr.Error = "deadline exceeded"
		logrus.WithField("source", cfg.ID).Warnf("timed out after %s with %d partial results", elapsed, len(opps))
	case err != nil:
		sr.Error = err.Error()
		logrus.WithField("source", cfg.ID).WithError(err).Warn("source failed")
	default:
		logrus.WithField("source", cfg.ID).Infof("found %d opportunities in %s", len(opps), elapsed)
	}
	return sr
}
