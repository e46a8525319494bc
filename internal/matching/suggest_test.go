package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/alumni-matcher/internal/alumni"
)

func TestSuggestScoring(t *testing.T) {
	t.Parallel()

	me := &alumni.Profile{
		ID: "me", Name: "Me", Industry: "Fintech", Location: "Berlin",
		Skills: []string{"Go", "SQL"}, GraduationYear: 2015, Role: "Backend Engineer",
	}
	roster := &alumni.Roster{Items: []*alumni.Profile{
		me,
		{ID: "a", Name: "Stranger", Industry: "Retail", Location: "Lisbon"},
		{ID: "b", Name: "Twin", Industry: "fintech", Location: "berlin", Skills: []string{"go", "SQL", "Kafka"}, GraduationYear: 2015, Role: "Platform Engineer"},
		{ID: "c", Name: "Neighbour", Location: "Berlin", Role: "Product Manager"},
		{ID: "d", Name: "Friend", Industry: "Fintech"},
	}}

	got := Suggest(me, roster, []string{"d"}, 0)
	require.Len(t, got, 3)

	assert.Equal(t, "Twin", got[0].Profile.Name)
	assert.Equal(t, 3+2+2+1+2, got[0].Score)
	assert.Equal(t, "Neighbour", got[1].Profile.Name)
	assert.Equal(t, 2, got[1].Score)
	assert.Equal(t, "Stranger", got[2].Profile.Name)
	assert.Equal(t, 0, got[2].Score)
}

func TestSuggestLimit(t *testing.T) {
	t.Parallel()

	me := &alumni.Profile{ID: "me"}
	roster := &alumni.Roster{Items: []*alumni.Profile{me}}
	for i := 0; i < 15; i++ {
		roster.Items = append(roster.Items, &alumni.Profile{ID: fmt.Sprint(i)})
	}

	assert.Len(t, Suggest(me, roster, nil, 0), DefaultSuggestions)
	assert.Len(t, Suggest(me, roster, nil, 2), 2)
	assert.Empty(t, Suggest(nil, roster, nil, 0))
}

func TestSuggestRoleCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"Engineering Manager", "Product Manager", 0},
		{"Engineering Manager", "Staff Engineer", 2},
		{"Product Manager", "Marketing Manager", 2},
		{"Senior Data Analyst", "analyst", 2},
		{"Founder", "Founder", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		got := similarity(&alumni.Profile{Role: tt.a}, &alumni.Profile{Role: tt.b})
		assert.Equal(t, tt.want, got, "%q vs %q", tt.a, tt.b)
	}
}
