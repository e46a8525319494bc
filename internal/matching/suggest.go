package matching

import (
	"sort"
	"strings"

	"github.com/spigell/alumni-matcher/internal/alumni"
)

// DefaultSuggestions is the number of connection suggestions returned.
const DefaultSuggestions = 10

var roleCategories = []string{"engineer", "manager", "designer", "analyst", "developer"}

// Suggestion is a profile the current member may want to connect with.
type Suggestion struct {
	Profile *alumni.Profile `json:"profile"`
	Score   int             `json:"score"`
}

// Suggest scores the roster by similarity to current. The member itself and
// already connected ids are skipped. Ties keep roster order.
func Suggest(current *alumni.Profile, roster *alumni.Roster, connected []string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	if current == nil {
		return []Suggestion{}
	}

	candidates := roster.Without(append([]string{current.ID}, connected...)...)

	suggestions := make([]Suggestion, 0, candidates.Len())
	for _, profile := range candidates.Items {
		suggestions = append(suggestions, Suggestion{Profile: profile, Score: similarity(current, profile)})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

func similarity(a, b *alumni.Profile) int {
	score := 0
	if a.Industry != "" && strings.EqualFold(a.Industry, b.Industry) {
		score += 3
	}
	if a.Location != "" && strings.EqualFold(a.Location, b.Location) {
		score += 2
	}

	skills := make(map[string]struct{}, len(a.Skills))
	for _, skill := range a.Skills {
		skills[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}
	for _, skill := range b.Skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if _, ok := skills[key]; ok && key != "" {
			score++
			delete(skills, key)
		}
	}

	if a.GraduationYear != 0 && a.GraduationYear == b.GraduationYear {
		score++
	}

	if category := roleCategory(a.Role); category != "" && category == roleCategory(b.Role) {
		score += 2
	}
	return score
}

// roleCategory returns the first category named in role, in roleCategories
// order. "Engineering Manager" is an engineer.
func roleCategory(role string) string {
	role = strings.ToLower(role)
	for _, category := range roleCategories {
		if strings.Contains(role, category) {
			return category
		}
	}
	return ""
}
