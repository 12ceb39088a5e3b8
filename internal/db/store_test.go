package db

import (
	"strings"
	"testing"

	"github.com/david/opportunity-scout/internal/models"
)

func TestUpsertArgsMatchPlaceholders(t *testing.T) {
	args := upsertArgs(models.Opportunity{ID: "s_1", Source: "s", NativeID: "1"})

	placeholders := strings.Count(upsertSQL, "$")
	if len(args) != placeholders {
		t.Fatalf("upsertArgs returns %d values but upsertSQL has %d placeholders", len(args), placeholders)
	}
}

func TestUpsertArgsNilTags(t *testing.T) {
	args := upsertArgs(models.Opportunity{ID: "s_1"})

	tags, ok := args[14].([]string)
	if !ok {
		t.Fatalf("tags arg has type %T, want []string", args[14])
	}
	if tags == nil {
		t.Fatal("nil tags must be stored as an empty array, not NULL")
	}
}
