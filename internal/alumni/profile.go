package alumni

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	ProfileIDField       = "ID"
	ProfileNameField     = "Name"
	ProfileRoleField     = "Role"
	ProfileCompanyField  = "Company"
	ProfileLocationField = "Location"
	ProfileIndustryField = "Industry"
)

// MentorshipStatus is the self-reported mentorship availability of a profile.
type MentorshipStatus string

const (
	MentorshipAvailable MentorshipStatus = "available"
	MentorshipSeeking   MentorshipStatus = "seeking"
	MentorshipNone      MentorshipStatus = "none"
)

// EntityType distinguishes the kind of network member.
type EntityType string

const (
	EntityStudent EntityType = "student"
	EntityAlumni  EntityType = "alumni"
	EntityTeacher EntityType = "teacher"
)

type CareerNode struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Title string `json:"title" yaml:"title" mapstructure:"title"`
	Org   string `json:"org" yaml:"org" mapstructure:"org"`
	Year  string `json:"year" yaml:"year" mapstructure:"year"`
}

// Profile is a single member of the alumni roster.
type Profile struct {
	ID               string           `json:"id" mapstructure:"id" validate:"required"`
	Name             string           `json:"name" mapstructure:"name" validate:"required"`
	Role             string           `json:"role,omitempty" mapstructure:"role"`
	Company          string           `json:"company,omitempty" mapstructure:"company"`
	Location         string           `json:"location,omitempty" mapstructure:"location"`
	Industry         string           `json:"industry,omitempty" mapstructure:"industry"`
	GraduationYear   int              `json:"graduationYear,omitempty" mapstructure:"graduationYear" validate:"omitempty,gte=1900,lte=2100"`
	Skills           []string         `json:"skills,omitempty" mapstructure:"skills"`
	Bio              string           `json:"bio,omitempty" mapstructure:"bio"`
	Avatar           string           `json:"avatar,omitempty" mapstructure:"avatar"`
	EntityType       EntityType       `json:"entityType,omitempty" mapstructure:"entityType" validate:"omitempty,oneof=student alumni teacher"`
	MentorshipStatus MentorshipStatus `json:"mentorshipStatus,omitempty" mapstructure:"mentorshipStatus" validate:"omitempty,oneof=available seeking none"`
	CareerPath       []CareerNode     `json:"careerPath,omitempty" mapstructure:"careerPath"`
}

// Status returns the mentorship status, treating an empty value as none.
func (p *Profile) Status() MentorshipStatus {
	if p.MentorshipStatus == "" {
		return MentorshipNone
	}
	return p.MentorshipStatus
}

func (p *Profile) GetStringField(name string) string {
	switch name {
	case ProfileIDField:
		return p.ID
	case ProfileNameField:
		return p.Name
	case ProfileRoleField:
		return p.Role
	case ProfileCompanyField:
		return p.Company
	case ProfileLocationField:
		return p.Location
	case ProfileIndustryField:
		return p.Industry
	default:
		return ""
	}
}

// Roster is the ordered, in-memory collection of profiles being searched.
type Roster struct {
	Items []*Profile
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

func (r *Roster) FindByID(id string) *Profile {
	if r == nil {
		return nil
	}
	for _, profile := range r.Items {
		if profile.ID == id {
			return profile
		}
	}
	return nil
}

func (r *Roster) Names() []string {
	names := make([]string, 0, r.Len())
	if r == nil {
		return names
	}
	for _, profile := range r.Items {
		names = append(names, profile.Name)
	}
	return names
}

// Without returns a new roster without the given ids. Order is preserved.
func (r *Roster) Without(ids ...string) *Roster {
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}

	out := &Roster{Items: make([]*Profile, 0, r.Len())}
	if r == nil {
		return out
	}
	for _, profile := range r.Items {
		if _, ok := skip[profile.ID]; ok {
			continue
		}
		out.Items = append(out.Items, profile)
	}
	return out
}

// ReportByIndustry groups the roster by industry for display.
func (r *Roster) ReportByIndustry() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	if r == nil {
		return report
	}
	for _, profile := range r.Items {
		key := profile.Industry
		if strings.TrimSpace(key) == "" {
			key = "unspecified"
		}
		entry := map[string]string{
			"name":       profile.Name,
			"role":       profile.Role,
			"company":    profile.Company,
			"location":   profile.Location,
			"mentorship": string(profile.Status()),
		}
		if profile.GraduationYear != 0 {
			entry["class_of"] = strconv.Itoa(profile.GraduationYear)
		}
		if len(profile.Skills) > 0 {
			entry["skills"] = strings.Join(profile.Skills, ", ")
		}
		report[key] = append(report[key], entry)
	}
	return report
}

// Industries returns the distinct industries in the roster, sorted.
func (r *Roster) Industries() []string {
	seen := make(map[string]struct{})
	if r != nil {
		for _, profile := range r.Items {
			if profile.Industry != "" {
				seen[profile.Industry] = struct{}{}
			}
		}
	}
	industries := make([]string, 0, len(seen))
	for industry := range seen {
		industries = append(industries, industry)
	}
	sort.Strings(industries)
	return industries
}

func (r *Roster) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "alumni_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode roster: %w", err)
	}
	return file.Name(), nil
}
