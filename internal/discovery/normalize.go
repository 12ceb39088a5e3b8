package discovery

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
)

// maxDescriptionLen bounds the description carried on every record.
const maxDescriptionLen = 500

var strictPolicy = bluemonday.StrictPolicy()

// OpportunityID composes the globally unique record ID. The source prefix
// keeps native IDs from unrelated platforms from colliding.
func OpportunityID(source, nativeID string) string {
	return source + "_" + nativeID
}

// ContentHash derives a stable native ID from content when the platform
// exposes no identifier of its own.
func ContentHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// TruncateText cuts a string to at most maxLen bytes, appending an ellipsis
// if truncated. The cut lands on a rune boundary so the result stays valid
// UTF-8.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	if maxLen > 3 {
		cut = maxLen - 3
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if maxLen > 3 {
		return text[:cut] + "..."
	}
	return text[:cut]
}

// cleanText collapses runs of whitespace into single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html) // fall back to the raw string
	}
	return cleanText(doc.Text())
}

// NormalizeDescription sanitizes possibly-HTML source text down to bounded
// plain text: unsafe markup stripped, tags removed, whitespace collapsed,
// truncated to the schema bound.
func NormalizeDescription(raw string) string {
	s := sanitizeUTF8(raw)
	s = strictPolicy.Sanitize(s)
	s = HTMLToText(s)
	return TruncateText(s, maxDescriptionLen)
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// NormalizeTimestamp parses a platform-supplied timestamp in whatever format
// the platform favors (RFC1123 pubDates, ISO variants, unix-ish strings) and
// re-emits RFC3339 UTC. Unparseable or empty input synthesizes the fallback,
// typically fetch time.
func NormalizeTimestamp(raw string, fallback time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return fallback.UTC().Format(time.RFC3339)
}
