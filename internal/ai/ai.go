package ai

import (
	"context"
	"strings"
)

// ExtractedIntent is a partially specified directory filter derived from free text.
// A nil field means the field imposes no constraint.
type ExtractedIntent struct {
	Location            *string `json:"location"`
	Industry            *string `json:"industry"`
	Role                *string `json:"role"`
	GraduationYearRange *string `json:"graduationYearRange"`
}

// NewIntent builds an intent from plain strings; blank values are treated as absent.
func NewIntent(location, industry, role, gradYears string) *ExtractedIntent {
	intent := &ExtractedIntent{
		Location:            optional(location),
		Industry:            optional(industry),
		Role:                optional(role),
		GraduationYearRange: optional(gradYears),
	}
	return intent.Normalize()
}

// Normalize trims every field, drops blank ones and returns nil when nothing is left.
func (i *ExtractedIntent) Normalize() *ExtractedIntent {
	if i == nil {
		return nil
	}
	out := &ExtractedIntent{
		Location:            normalizePtr(i.Location),
		Industry:            normalizePtr(i.Industry),
		Role:                normalizePtr(i.Role),
		GraduationYearRange: normalizePtr(i.GraduationYearRange),
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}

func (i *ExtractedIntent) IsEmpty() bool {
	return i == nil || (i.Location == nil && i.Industry == nil && i.Role == nil && i.GraduationYearRange == nil)
}

// Fields returns the present fields keyed by name, for display.
func (i *ExtractedIntent) Fields() map[string]string {
	fields := make(map[string]string)
	if i == nil {
		return fields
	}
	for key, value := range map[string]*string{
		"location":            i.Location,
		"industry":            i.Industry,
		"role":                i.Role,
		"graduationYearRange": i.GraduationYearRange,
	} {
		if value != nil {
			fields[key] = *value
		}
	}
	return fields
}

// AudioAnalysis is the structured result of one recorded mentorship request.
type AudioAnalysis struct {
	Transcript        string   `json:"transcript"`
	Keywords          []string `json:"keywords"`
	PersonalityTraits []string `json:"personalityTraits"`
	MatchingScoreHint int      `json:"matchingScoreHint"`
}

// IntentExtractor turns a directory query into an intent. It never fails:
// any problem degrades to a nil intent.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) *ExtractedIntent
}

// AudioAnalyzer turns a recorded clip into an analysis. Failures are returned.
type AudioAnalyzer interface {
	Analyze(ctx context.Context, payload []byte, mimeType string) (*AudioAnalysis, error)
}

// Writer produces free-form networking text.
type Writer interface {
	EnhanceBio(ctx context.Context, bio string) string
	Icebreakers(ctx context.Context, name, bio string) []string
	Briefing(ctx context.Context, subject BriefingSubject) string
}

// BriefingSubject is the context a daily briefing is written for.
type BriefingSubject struct {
	Name     string
	Industry string
	Interest string
	Role     string
	Company  string
	Skills   []string
}

func optional(s string) *string {
	return normalizePtr(&s)
}

func normalizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
