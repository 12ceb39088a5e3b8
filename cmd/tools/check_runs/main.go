package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/opportunity-scout/internal/db"
)

// Prints the most recent discovery runs.
func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
		SELECT id::text, caller, total_found, total_estimated_value, sources_scraped, completed_at
		FROM discovery_runs ORDER BY completed_at DESC LIMIT 10`)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Caller", "Found", "Est. Value", "Sources", "Completed At"})

	for rows.Next() {
		var id, caller string
		var found int
		var value int64
		var sources []string
		var completedAt time.Time

		if err := rows.Scan(&id, &caller, &found, &value, &sources, &completedAt); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		t.AppendRow(table.Row{id[:8], caller, found, value, strings.Join(sources, ","), completedAt.Format("2006-01-02 15:04:05")})
	}
	t.Render()
}
