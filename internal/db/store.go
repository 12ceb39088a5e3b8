package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/david/opportunity-scout/internal/discovery"
	"github.com/david/opportunity-scout/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query    string
	Source   string
	Type     string
	MinValue int64
	MinScore int
	SortBy   string // "newest" (default), "value", "score"
	Limit    int
	Offset   int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

const selectCols = `id, source, native_id, title, description, url, type,
	estimated_value, value_basis, source_created_at, match_score,
	company, subreddit, category, tags, discovered_at`

func scanOpportunity(scan func(dest ...any) error) (models.Opportunity, error) {
	var o models.Opportunity
	err := scan(
		&o.ID, &o.Source, &o.NativeID, &o.Title, &o.Description, &o.URL, &o.Type,
		&o.EstimatedValue, &o.ValueBasis, &o.CreatedAt, &o.MatchScore,
		&o.Company, &o.Subreddit, &o.Category, &o.Tags, &o.DiscoveredAt,
	)
	return o, err
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (*ListResult, error) {
	where := "WHERE 1=1"
	var args []any
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.Source != "" {
		where += fmt.Sprintf(" AND source = $%d", argIdx)
		args = append(args, params.Source)
		argIdx++
	}
	if params.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, params.Type)
		argIdx++
	}
	if params.MinValue > 0 {
		where += fmt.Sprintf(" AND estimated_value >= $%d", argIdx)
		args = append(args, params.MinValue)
		argIdx++
	}
	if params.MinScore > 0 {
		where += fmt.Sprintf(" AND match_score >= $%d", argIdx)
		args = append(args, params.MinScore)
		argIdx++
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM opportunities " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM opportunities %s", selectCols, where)
	switch params.SortBy {
	case "value":
		selectSQL += " ORDER BY estimated_value DESC, discovered_at DESC"
	case "score":
		selectSQL += " ORDER BY match_score DESC, discovered_at DESC"
	default: // "newest"
		selectSQL += " ORDER BY discovered_at DESC"
	}

	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}
	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if opps == nil {
		opps = []models.Opportunity{}
	}
	return &ListResult{
		Opportunities: opps,
		Total:         total,
		Limit:         params.Limit,
		Offset:        params.Offset,
	}, nil
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	sql := fmt.Sprintf("SELECT %s FROM opportunities WHERE id = $1", selectCols)
	o, err := scanOpportunity(s.pool.QueryRow(ctx, sql, id).Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &o, nil
}

const upsertSQL = `
	INSERT INTO opportunities (
		id, source, native_id, title, description, url, type,
		estimated_value, value_basis, source_created_at, match_score,
		company, subreddit, category, tags, discovered_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (source, native_id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		url = EXCLUDED.url,
		estimated_value = EXCLUDED.estimated_value,
		value_basis = EXCLUDED.value_basis,
		match_score = EXCLUDED.match_score,
		tags = EXCLUDED.tags,
		updated_at = NOW()`

func upsertArgs(o models.Opportunity) []any {
	tags := o.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		o.ID, o.Source, o.NativeID, o.Title, o.Description, o.URL, o.Type,
		o.EstimatedValue, o.ValueBasis, o.CreatedAt, o.MatchScore,
		o.Company, o.Subreddit, o.Category, tags, o.DiscoveredAt,
	}
}

func (s *Store) UpsertOpportunity(ctx context.Context, o models.Opportunity) error {
	if _, err := s.pool.Exec(ctx, upsertSQL, upsertArgs(o)...); err != nil {
		return fmt.Errorf("upsert failed for %s: %w", o.ID, err)
	}
	return nil
}

// RecordRun persists one discovery run and all opportunities it surfaced, in
// a single transaction. Implements the discovery engine's Recorder.
func (s *Store) RecordRun(ctx context.Context, res *discovery.AggregateResult) error {
	bySource, err := json.Marshal(res.BySource)
	if err != nil {
		return fmt.Errorf("encoding by_source: %w", err)
	}
	sourcesScraped := res.SourcesScraped
	if sourcesScraped == nil {
		sourcesScraped = []string{}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO discovery_runs (id, caller, total_found, total_estimated_value, sources_scraped, by_source, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			res.RunID, res.Caller, res.TotalFound, res.TotalEstimatedValue,
			sourcesScraped, bySource, res.CompletedAt,
		); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		for _, o := range res.Opportunities {
			if _, err := tx.Exec(ctx, upsertSQL, upsertArgs(o)...); err != nil {
				return fmt.Errorf("upserting %s: %w", o.ID, err)
			}
		}
		return nil
	})
}

// RunSummary is one row of the discovery run history.
type RunSummary struct {
	ID                  string   `json:"id"`
	Caller              string   `json:"caller"`
	TotalFound          int      `json:"total_found"`
	TotalEstimatedValue int64    `json:"total_estimated_value"`
	SourcesScraped      []string `json:"sources_scraped"`
	CompletedAt         string   `json:"completed_at"`
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, caller, total_found, total_estimated_value, sources_scraped, completed_at::text
		FROM discovery_runs ORDER BY completed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Caller, &r.TotalFound, &r.TotalEstimatedValue, &r.SourcesScraped, &r.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SourceStat is the per-source slice of the stored corpus.
type SourceStat struct {
	Source     string `json:"source"`
	Count      int    `json:"count"`
	TotalValue int64  `json:"total_value"`
}

func (s *Store) GetStats(ctx context.Context) (map[string]any, error) {
	stats := make(map[string]any)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&total); err != nil {
		return nil, err
	}
	stats["total"] = total

	var totalValue int64
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(SUM(estimated_value), 0) FROM opportunities").Scan(&totalValue); err != nil {
		return nil, err
	}
	stats["total_estimated_value"] = totalValue

	rows, err := s.pool.Query(ctx, `
		SELECT source, COUNT(*), COALESCE(SUM(estimated_value), 0)
		FROM opportunities GROUP BY source ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bySource []SourceStat
	for rows.Next() {
		var st SourceStat
		if err := rows.Scan(&st.Source, &st.Count, &st.TotalValue); err != nil {
			return nil, err
		}
		bySource = append(bySource, st)
	}
	stats["by_source"] = bySource

	var runs int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM discovery_runs").Scan(&runs); err != nil {
		return nil, err
	}
	stats["runs"] = runs

	return stats, nil
}

func (s *Store) GetSources(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT source FROM opportunities ORDER BY source")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err == nil {
			sources = append(sources, src)
		}
	}
	return sources, rows.Err()
}
