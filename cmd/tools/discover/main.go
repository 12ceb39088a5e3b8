package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	"github.com/david/opportunity-scout/internal/discovery"
)

// One-shot discovery run from the command line, no database required.
// Results are printed as a table plus a per-source breakdown.
func main() {
	var (
		sourcesFlag  = flag.String("sources", "", "comma-separated source IDs (default: all enabled)")
		skillsFlag   = flag.String("skills", "", "comma-separated skills to bias matching")
		keywordsFlag = flag.String("keywords", "", "comma-separated profile keywords")
		minValue     = flag.Int64("min-value", 0, "drop results below this estimated value")
		limit        = flag.Int("limit", 30, "rows to print")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	registry, err := discovery.LoadRegistry(os.Getenv("SOURCES_FILE"))
	if err != nil {
		logrus.Fatalf("Failed to load source registry: %v", err)
	}

	cache := discovery.NewMemoryCache(discovery.DefaultCacheTTL)
	engine, err := discovery.NewEngine(registry, nil, cache, nil)
	if err != nil {
		logrus.Fatalf("Failed to build discovery engine: %v", err)
	}

	profile := discovery.Profile{
		Skills:   splitCSV(*skillsFlag),
		Keywords: splitCSV(*keywordsFlag),
		MinValue: *minValue,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res := engine.Discover(ctx, "cli", profile, splitCSV(*sourcesFlag))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Score", "Value", "Title", "URL"})
	for i, opp := range res.Opportunities {
		if i >= *limit {
			break
		}
		title := opp.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		t.AppendRow(table.Row{opp.Source, opp.MatchScore, fmt.Sprintf("$%d", opp.EstimatedValue), title, opp.URL})
	}
	t.Render()

	fmt.Printf("\nRun %s: %d opportunities, estimated value $%d\n", res.RunID, res.TotalFound, res.TotalEstimatedValue)
	for _, id := range engine.Sources() {
		sr, ok := res.BySource[id]
		if !ok {
			continue
		}
		switch {
		case sr.TimedOut:
			fmt.Printf("  %-16s timed out (%d partial)\n", id, sr.Count)
		case sr.Error != "":
			fmt.Printf("  %-16s error: %s\n", id, sr.Error)
		default:
			fmt.Printf("  %-16s %d\n", id, sr.Count)
		}
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
