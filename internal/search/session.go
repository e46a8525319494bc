// Package search holds the directory search session: the query, the intent
// extracted from it and the roster view they select.
package search

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/alumni"
	"github.com/spigell/alumni-matcher/internal/filtering"
)

// State of a search session.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateFiltered  State = "filtered"
)

// Result is the outcome of one submission.
type Result struct {
	Query    string              `json:"query"`
	Intent   *ai.ExtractedIntent `json:"intent"`
	Profiles []*alumni.Profile   `json:"profiles"`
	Steps    []filtering.Status  `json:"steps,omitempty"`

	// Stale is set when a newer submission superseded this one; the session
	// keeps the newer state.
	Stale bool `json:"stale,omitempty"`
}

// Session tracks a single directory search. It is safe for concurrent use.
type Session struct {
	roster    *alumni.Roster
	extractor ai.IntentExtractor
	cfg       *filtering.Config
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	query      string
	intent     *ai.ExtractedIntent
}

func NewSession(roster *alumni.Roster, extractor ai.IntentExtractor, cfg *filtering.Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roster == nil {
		roster = &alumni.Roster{}
	}
	return &Session{
		roster:    roster,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
		state:     StateIdle,
	}
}

// Submit runs the query through the extractor and the filter steps. An empty
// query clears the session.
func (s *Session) Submit(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.Clear()
		return s.Results(ctx)
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = StateSearching
	s.query = query
	s.intent = nil
	s.mu.Unlock()

	var intent *ai.ExtractedIntent
	if s.extractor != nil {
		intent = s.extractor.Extract(ctx, query)
	}

	profiles, steps, err := s.apply(ctx, query, intent)

	s.mu.Lock()
	stale := gen != s.generation
	if !stale {
		s.state = StateFiltered
		s.intent = intent
		if err != nil {
			// keep the session usable; the caller gets the error
			s.state = StateIdle
			s.query = ""
			s.intent = nil
		}
	}
	s.mu.Unlock()

	if stale {
		s.logger.Debug("discarding stale search response", zap.String("query", query), zap.Uint64("generation", gen))
	}
	if err != nil {
		return nil, err
	}

	return &Result{Query: query, Intent: intent, Profiles: profiles, Steps: steps, Stale: stale}, nil
}

// Clear resets the session to Idle and invalidates in-flight submissions.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateIdle
	s.query = ""
	s.intent = nil
}

// Results returns the current view: the full roster when idle, otherwise the
// roster filtered by the last applied query and intent.
func (s *Session) Results(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	state, query, intent := s.state, s.query, s.intent
	s.mu.Unlock()

	if state == StateIdle {
		return &Result{Profiles: append([]*alumni.Profile{}, s.roster.Items...)}, nil
	}

	// while searching the intent is not known yet
	profiles, steps, err := s.apply(ctx, query, intent)
	if err != nil {
		return nil, err
	}
	return &Result{Query: query, Intent: intent, Profiles: profiles, Steps: steps}, nil
}

// State returns the current state, query and intent.
func (s *Session) State() (State, string, *ai.ExtractedIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.query, s.intent
}

func (s *Session) apply(ctx context.Context, query string, intent *ai.ExtractedIntent) ([]*alumni.Profile, []filtering.Status, error) {
	steps := Steps(query, intent)
	if s.cfg != nil && s.cfg.ExcludeFile != "" {
		steps = append([]filtering.Filter{filtering.NewExcludeFile()}, steps...)
	}

	out, err := filtering.Run(ctx, s.cfg, filtering.Deps{Logger: s.logger}, steps, s.roster)
	if err != nil {
		return nil, nil, err
	}
	return out.Items, filtering.Describe(steps), nil
}

// Steps returns the directory filter steps in application order.
func Steps(query string, intent *ai.ExtractedIntent) []filtering.Filter {
	return []filtering.Filter{
		filtering.NewQuery(query),
		filtering.NewIntent(intent),
	}
}
