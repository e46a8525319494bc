package server

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/alumni"
	"github.com/spigell/alumni-matcher/internal/audio"
	"github.com/spigell/alumni-matcher/internal/matching"
	"github.com/spigell/alumni-matcher/internal/search"
)

type searchRequest struct {
	Query string `json:"query" validate:"max=500"`
}

type matchRequest struct {
	Audio    string `json:"audio" validate:"omitempty,base64"`
	MIMEType string `json:"mimeType" validate:"max=100"`
	Top      int    `json:"top" validate:"omitempty,gte=1,lte=50"`
}

type matchResponse struct {
	Analysis   *ai.AudioAnalysis          `json:"analysis"`
	Candidates []matching.ScoredCandidate `json:"candidates"`
}

type bioRequest struct {
	Bio string `json:"bio" validate:"required,max=5000"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"profiles": s.deps.Roster.Len(),
		"sessions": s.sessions.len(),
	})
}

func (s *Server) listAlumni(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"items": s.deps.Roster.Items})
}

func (s *Server) report(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Roster.ReportByIndustry())
}

func (s *Server) getProfile(c echo.Context) error {
	profile, ok := s.profile(c)
	if !ok {
		return notFound(c, c.Param("id"))
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) newSession() *search.Session {
	return search.NewSession(s.deps.Roster, s.deps.Extractor, s.deps.Filtering, s.logger)
}

func (s *Server) session(c echo.Context) *search.Session {
	id, session := s.sessions.get(c.Request().Header.Get(SessionHeader))
	c.Response().Header().Set(SessionHeader, id)
	return session
}

func (s *Server) submitSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := s.session(c).Submit(c.Request().Context(), req.Query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) currentSearch(c echo.Context) error {
	result, err := s.session(c).Results(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) clearSearch(c echo.Context) error {
	s.session(c).Clear()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) match(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if s.deps.Analyzer == nil {
		return aiError(c, ai.Errorf(ai.ErrUnsupportedCapability, "audio analysis is not configured"))
	}

	payload, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return badRequest(c, "audio must be base64 encoded")
	}
	if len(payload) == 0 {
		return aiError(c, ai.Errorf(ai.ErrEmptyInput, "audio payload is empty"))
	}

	mimeType, err := audio.Detect(payload, req.MIMEType)
	if err != nil {
		return aiError(c, err)
	}

	analysis, err := s.deps.Analyzer.Analyze(c.Request().Context(), payload, mimeType)
	if err != nil {
		s.logger.Warn("mentorship analysis failed", zap.String("error_kind", ai.Kind(err)), zap.Error(err))
		return aiError(c, err)
	}

	top := req.Top
	if top == 0 {
		top = s.deps.Top
	}
	return c.JSON(http.StatusOK, matchResponse{
		Analysis:   analysis,
		Candidates: matching.Rank(analysis, s.deps.Roster, top),
	})
}

func (s *Server) enhanceBio(c echo.Context) error {
	var req bioRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Bio) == "" {
		return aiError(c, ai.Errorf(ai.ErrEmptyInput, "bio is empty"))
	}
	if err := s.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"bio": s.deps.Writer.EnhanceBio(c.Request().Context(), req.Bio)})
}

func (s *Server) icebreakers(c echo.Context) error {
	profile, ok := s.profile(c)
	if !ok {
		return notFound(c, c.Param("id"))
	}
	lines := s.deps.Writer.Icebreakers(c.Request().Context(), profile.Name, profile.Bio)
	return c.JSON(http.StatusOK, map[string]any{"icebreakers": lines})
}

func (s *Server) briefing(c echo.Context) error {
	profile, ok := s.profile(c)
	if !ok {
		return notFound(c, c.Param("id"))
	}
	text := s.deps.Writer.Briefing(c.Request().Context(), ai.BriefingSubject{
		Name:     profile.Name,
		Industry: profile.Industry,
		Interest: c.QueryParam("interest"),
		Role:     profile.Role,
		Company:  profile.Company,
		Skills:   profile.Skills,
	})
	return c.JSON(http.StatusOK, map[string]string{"briefing": text})
}

func (s *Server) suggestions(c echo.Context) error {
	profile, ok := s.profile(c)
	if !ok {
		return notFound(c, c.Param("id"))
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}
		limit = n
	}

	var connected []string
	for _, id := range strings.Split(c.QueryParam("connected"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			connected = append(connected, id)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"suggestions": matching.Suggest(profile, s.deps.Roster, connected, limit),
	})
}

func (s *Server) profile(c echo.Context) (*alumni.Profile, bool) {
	profile := s.deps.Roster.FindByID(c.Param("id"))
	return profile, profile != nil
}
