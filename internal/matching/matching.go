// Package matching ranks roster profiles against an analyzed mentorship request.
package matching

import (
	"sort"
	"strings"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/alumni"
)

const (
	// DefaultTop is the number of candidates presented for a mentorship request.
	DefaultTop = 3
	// MaxScore is the highest score a candidate can reach.
	MaxScore = 99

	keywordWeight = 10
	defaultVibe   = "Ambitious"
)

// ScoredCandidate is a profile with its match score and display tags.
type ScoredCandidate struct {
	Profile  *alumni.Profile `json:"profile"`
	Score    int             `json:"score"`
	VibeTags []string        `json:"vibeTags"`
}

// Rank scores every profile against the analysis and returns the best top
// candidates. Ties keep roster order. A non-positive top means DefaultTop.
func Rank(analysis *ai.AudioAnalysis, roster *alumni.Roster, top int) []ScoredCandidate {
	if top <= 0 {
		top = DefaultTop
	}
	if roster.Len() == 0 {
		return []ScoredCandidate{}
	}

	hint := 0
	var keywords, traits []string
	if analysis != nil {
		hint = analysis.MatchingScoreHint
		keywords = normalizeKeywords(analysis.Keywords)
		traits = analysis.PersonalityTraits
	}

	vibe := defaultVibe
	if len(traits) > 0 && strings.TrimSpace(traits[0]) != "" {
		vibe = strings.TrimSpace(traits[0])
	}

	candidates := make([]ScoredCandidate, 0, roster.Len())
	for _, profile := range roster.Items {
		candidates = append(candidates, ScoredCandidate{
			Profile:  profile,
			Score:    clamp(hint+countMatches(keywords, profile)*keywordWeight, 0, MaxScore),
			VibeTags: []string{vibe, profile.Industry},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > top {
		candidates = candidates[:top]
	}
	return candidates
}

// countMatches counts keywords found in any skill or in the industry. Each
// keyword counts at most once.
func countMatches(keywords []string, profile *alumni.Profile) int {
	haystack := make([]string, 0, len(profile.Skills)+1)
	for _, skill := range profile.Skills {
		haystack = append(haystack, strings.ToLower(skill))
	}
	haystack = append(haystack, strings.ToLower(profile.Industry))

	matches := 0
	for _, keyword := range keywords {
		for _, field := range haystack {
			if field != "" && strings.Contains(field, keyword) {
				matches++
				break
			}
		}
	}
	return matches
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			out = append(out, keyword)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
