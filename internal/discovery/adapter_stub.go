package discovery

import (
	"context"

	"github.com/david/opportunity-scout/internal/models"
)

// StubAdapter stands in for platforms without an approved data-access path.
// It always succeeds with zero results, keeping the source visible in the
// per-run breakdown without touching the upstream.
type StubAdapter struct {
	adapterBase
}

func NewStubAdapter(cfg SourceConfig, cache Cache) *StubAdapter {
	return &StubAdapter{adapterBase: newAdapterBase(cfg, cache)}
}

func (a *StubAdapter) Fetch(ctx context.Context, profile Profile) ([]models.Opportunity, error) {
	return nil, nil
}
