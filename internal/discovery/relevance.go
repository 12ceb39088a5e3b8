package discovery

import "strings"

// defaultHiringKeywords flag a post as an actionable request for work when a
// source has no keyword list of its own in the registry.
var defaultHiringKeywords = []string{
	"hiring", "looking for", "need help", "freelancer", "contract", "gig", "opportunity",
}

// containsAnyKeyword reports whether any keyword occurs in the text,
// case-insensitively. An empty keyword list matches everything.
func containsAnyKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// MatchScore rates how well an opportunity's text fits the caller's profile,
// 0..100. It is a cheap keyword-overlap heuristic: skill hits count 20 each
// up to 60, profile keywords 20 each up to 40.
func MatchScore(title, body string, profile Profile) int {
	text := strings.ToLower(title + " " + body)

	words := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		words[strings.Trim(w, ".,;:!?()[]\"'")] = true
	}

	score := 0
	skillHits := 0
	for _, skill := range profile.Skills {
		if words[strings.ToLower(skill)] {
			skillHits++
		}
	}
	score += min(skillHits*20, 60)

	kwHits := 0
	for _, kw := range profile.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			kwHits++
		}
	}
	score += min(kwHits*20, 40)

	return min(score, 100)
}
