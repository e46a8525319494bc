package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spigell/alumni-matcher/internal/search"
)

// SessionHeader carries the directory search session id.
const SessionHeader = "X-Search-Session"

// sessions keeps the most recently created search sessions.
type sessions struct {
	mu    sync.Mutex
	limit int
	items map[string]*search.Session
	order []string
	build func() *search.Session
}

func newSessions(limit int, build func() *search.Session) *sessions {
	return &sessions{limit: limit, items: make(map[string]*search.Session), build: build}
}

// get returns the session for id, creating one under a fresh id when id is
// unknown or empty.
func (s *sessions) get(id string) (string, *search.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.items[id]; ok {
		return id, session
	}

	id = uuid.NewString()
	session := s.build()
	s.items[id] = session
	s.order = append(s.order, id)

	for len(s.order) > s.limit {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
	return id, session
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
