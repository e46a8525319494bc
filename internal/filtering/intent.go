package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/alumni"
)

type intentFilter struct {
	intent   *ai.ExtractedIntent
	years    *yearRange
	disabled string
}

// NewIntent creates a filter requiring every present intent field to match.
// A nil or empty intent keeps everything.
func NewIntent(intent *ai.ExtractedIntent) Filter {
	f := &intentFilter{intent: intent.Normalize()}
	if f.intent != nil && f.intent.GraduationYearRange != nil {
		f.years = parseYearRange(*f.intent.GraduationYearRange)
	}
	return f
}

func (f *intentFilter) Name() string { return "intent" }

func (f *intentFilter) Disable(reason string) { f.disabled = reason }

func (f *intentFilter) IsEnabled() bool { return f.disabled == "" }

func (f *intentFilter) Validate(*Config) error { return nil }

func (f *intentFilter) Apply(_ context.Context, deps Deps, r *alumni.Roster) (*alumni.Roster, Step, error) {
	initial := r.Len()
	if f.intent == nil {
		return r, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	constraints := map[string]string{}
	for field, value := range map[string]*string{
		alumni.ProfileLocationField: f.intent.Location,
		alumni.ProfileIndustryField: f.intent.Industry,
		alumni.ProfileRoleField:     f.intent.Role,
	} {
		if value != nil {
			constraints[field] = strings.ToLower(*value)
		}
	}

	out, dropped := keep(r, func(p *alumni.Profile) bool {
		for field, needle := range constraints {
			if !strings.Contains(strings.ToLower(p.GetStringField(field)), needle) {
				return false
			}
		}
		return f.years.contains(p.GraduationYear)
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding profiles not matching intent",
			zap.Any("intent", f.intent.Fields()),
			zap.Strings("excluded_profiles", dropped),
			zap.Int("profiles_left", out.Len()),
		)
	}

	return out, Step{Initial: initial, Dropped: len(dropped), Left: out.Len()}, nil
}

func (f *intentFilter) Status() Status {
	details := f.intent.Fields()
	if f.years == nil {
		delete(details, "graduationYearRange")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}
