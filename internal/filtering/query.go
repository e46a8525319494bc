package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/alumni"
)

var queryFields = []string{alumni.ProfileNameField, alumni.ProfileRoleField, alumni.ProfileCompanyField}

type queryFilter struct {
	query    string
	disabled string
}

// NewQuery creates a filter keeping profiles whose name, role or company
// contains the query. An empty query keeps everything.
func NewQuery(query string) Filter {
	return &queryFilter{query: strings.TrimSpace(query)}
}

func (f *queryFilter) Name() string { return "query" }

func (f *queryFilter) Disable(reason string) { f.disabled = reason }

func (f *queryFilter) IsEnabled() bool { return f.disabled == "" }

func (f *queryFilter) Validate(*Config) error { return nil }

func (f *queryFilter) Apply(_ context.Context, deps Deps, r *alumni.Roster) (*alumni.Roster, Step, error) {
	initial := r.Len()
	if f.query == "" {
		return r, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	needle := strings.ToLower(f.query)
	out, dropped := keep(r, func(p *alumni.Profile) bool {
		for _, field := range queryFields {
			if strings.Contains(strings.ToLower(p.GetStringField(field)), needle) {
				return true
			}
		}
		return false
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding profiles not matching query",
			zap.String("query", f.query),
			zap.Int("profiles_left", out.Len()),
		)
	}

	return out, Step{Initial: initial, Dropped: len(dropped), Left: out.Len()}, nil
}

func (f *queryFilter) Status() Status {
	details := map[string]string{}
	if f.query != "" {
		details["query"] = f.query
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}
