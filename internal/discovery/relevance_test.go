package discovery

import "testing"

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		body    string
		profile Profile
		want    int
	}{
		{
			name: "no profile terms scores zero",
			title: "Hiring a Go developer",
			want: 0,
		},
		{
			name:    "single skill hit",
			title:   "Hiring a Go developer",
			profile: Profile{Skills: []string{"go"}},
			want:    20,
		},
		{
			name:    "skills capped at three",
			title:   "go python rust javascript all wanted",
			profile: Profile{Skills: []string{"go", "python", "rust", "javascript"}},
			want:    60,
		},
		{
			name:    "keywords add on top of skills",
			title:   "Need a go contractor for scraping work",
			profile: Profile{Skills: []string{"go"}, Keywords: []string{"scraping", "contractor"}},
			want:    60,
		},
		{
			name:    "keywords capped at two",
			body:    "scraping automation etl pipelines",
			profile: Profile{Keywords: []string{"scraping", "automation", "etl"}},
			want:    40,
		},
		{
			name:    "full house caps at 100",
			title:   "go python rust scraping automation contract work",
			profile: Profile{Skills: []string{"go", "python", "rust"}, Keywords: []string{"scraping", "automation"}},
			want:    100,
		},
		{
			name:    "matching is case insensitive",
			title:   "GOLANG Backend ROLE",
			profile: Profile{Skills: []string{"golang"}},
			want:    20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(tt.title, tt.body, tt.profile)
			if got != tt.want {
				t.Errorf("MatchScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContainsAnyKeyword(t *testing.T) {
	if !containsAnyKeyword("anything at all", nil) {
		t.Error("empty keyword list should match everything")
	}
	if !containsAnyKeyword("we are hiring now", []string{"hiring"}) {
		t.Error("expected keyword hit")
	}
	if containsAnyKeyword("vacation photos", []string{"hiring", "freelance"}) {
		t.Error("expected no keyword hit")
	}
}
