package discovery

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultEstimatedValue is the nominal placeholder used when no money pattern
// matches and the platform supplies nothing.
const DefaultEstimatedValue = 500

var (
	// "$500-$1000", "$500 - 1000": two amounts separated by a dash.
	budgetRangeRegex = regexp.MustCompile(`\$([0-9][0-9,]*)\s*[-–]\s*\$?([0-9][0-9,]*)`)
	// "$50/hr", "$50/hour", "$50 per hour".
	budgetHourlyRegex = regexp.MustCompile(`(?i)\$([0-9][0-9,]*)\s*(?:/\s*(?:hr|hour)|per\s+hour)`)
	// "$2,500": a single amount.
	budgetSingleRegex = regexp.MustCompile(`\$([0-9][0-9,]*)`)
)

// ExtractBudget infers a monetary estimate (whole currency units) from free
// text. It is a best-effort heuristic, not a financial parser: an unrelated
// dollar figure in prose is an accepted false positive. It never fails and
// never returns a negative value; when nothing matches it returns
// DefaultEstimatedValue.
//
// Patterns are tried in order, first match wins: a range yields the mean of
// its bounds, an hourly rate yields rate*40 (one full-time week), a single
// amount yields that amount. The hourly check runs before the single-amount
// check so "$50/hr" is not misread as a flat $50.
func ExtractBudget(text string) int64 {
	v, _ := ExtractBudgetDetail(text)
	return v
}

// ExtractBudgetDetail is ExtractBudget plus a flag reporting whether a money
// pattern actually matched, so callers can distinguish an inferred value from
// the placeholder default.
func ExtractBudgetDetail(text string) (int64, bool) {
	if m := budgetRangeRegex.FindStringSubmatch(text); m != nil {
		lo, loErr := parseAmount(m[1])
		hi, hiErr := parseAmount(m[2])
		if loErr == nil && hiErr == nil {
			return (lo + hi) / 2, true
		}
	}

	if m := budgetHourlyRegex.FindStringSubmatch(text); m != nil {
		if rate, err := parseAmount(m[1]); err == nil {
			return rate * 40, true
		}
	}

	if m := budgetSingleRegex.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			return v, true
		}
	}

	return DefaultEstimatedValue, false
}

// parseAmount strips thousands separators and parses a non-negative integer.
func parseAmount(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}
