package filtering

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/alumni-matcher/internal/alumni"
)

type excludeFileFilter struct {
	path     string
	ids      []string
	disabled string
}

// NewExcludeFile creates a filter that hides profiles listed in the exclude
// file configured in Config.ExcludeFile. Without a file it keeps everything.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) { f.disabled = reason }

func (f *excludeFileFilter) IsEnabled() bool { return f.disabled == "" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path, f.ids = "", nil
	if cfg == nil || strings.TrimSpace(cfg.ExcludeFile) == "" {
		return nil
	}
	f.path = strings.TrimSpace(cfg.ExcludeFile)

	ids, err := readExcludedIDs(f.path)
	if err != nil {
		return fmt.Errorf("getting excluded profiles from file: %w", err)
	}
	f.ids = ids
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, r *alumni.Roster) (*alumni.Roster, Step, error) {
	initial := r.Len()
	if len(f.ids) == 0 {
		return r, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	out := r.Without(f.ids...)
	dropped := initial - out.Len()
	if deps.Logger != nil && dropped > 0 {
		deps.Logger.Debug("excluding profiles based on exclude file",
			zap.String("path", f.path),
			zap.Int("profiles_left", out.Len()),
		)
	}

	return out, Step{Initial: initial, Dropped: dropped, Left: out.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
		details["ids"] = fmt.Sprint(len(f.ids))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}

// readExcludedIDs accepts a YAML list of ids or a mapping with an "ids" list.
func readExcludedIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc struct {
		IDs []string `yaml:"ids"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.IDs, nil
}
