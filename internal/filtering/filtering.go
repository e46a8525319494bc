package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/alumni"
)

// Filter represents a single filtering step applied to the roster. Apply must
// not modify the roster it receives.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, r *alumni.Roster) (*alumni.Roster, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeFile string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining
// profiles. The input roster is never modified.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, r *alumni.Roster) (*alumni.Roster, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := &alumni.Roster{}
	if r != nil {
		current.Items = append(make([]*alumni.Profile, 0, r.Len()), r.Items...)
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns a new roster with the profiles accepted by match, and the
// names of the dropped ones.
func keep(r *alumni.Roster, match func(*alumni.Profile) bool) (*alumni.Roster, []string) {
	out := &alumni.Roster{Items: make([]*alumni.Profile, 0, r.Len())}
	var dropped []string
	if r == nil {
		return out, dropped
	}
	for _, profile := range r.Items {
		if match(profile) {
			out.Items = append(out.Items, profile)
			continue
		}
		dropped = append(dropped, profile.Name)
	}
	return out, dropped
}
