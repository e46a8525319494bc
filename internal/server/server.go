// Package server exposes the matching pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/alumni"
	"github.com/spigell/alumni-matcher/internal/filtering"
)

const (
	defaultBodyLimit   = "8M"
	defaultMaxSessions = 1024
)

// Deps holds everything the handlers need.
type Deps struct {
	Roster    *alumni.Roster
	Extractor ai.IntentExtractor
	Analyzer  ai.AudioAnalyzer
	Writer    ai.Writer
	Filtering *filtering.Config
	Top       int
	Logger    *zap.Logger
}

// Options tune the HTTP layer.
type Options struct {
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	BodyLimit         string  `mapstructure:"body-limit"`
	MaxSessions       int     `mapstructure:"max-sessions"`
}

type Server struct {
	echo     *echo.Echo
	deps     Deps
	logger   *zap.Logger
	validate *validator.Validate
	sessions *sessions
}

func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Roster == nil {
		deps.Roster = &alumni.Roster{}
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = defaultBodyLimit
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		deps:     deps,
		logger:   deps.Logger,
		validate: validator.New(),
	}
	s.sessions = newSessions(opts.MaxSessions, s.newSession)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	e.Use(s.requestLogger())
	if opts.RequestsPerSecond > 0 {
		e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(opts.RequestsPerSecond))))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)

	v1 := s.echo.Group("/api/v1")
	{
		v1.GET("/alumni", s.listAlumni)
		v1.GET("/alumni/report", s.report)
		v1.GET("/alumni/:id", s.getProfile)
		v1.GET("/alumni/:id/icebreakers", s.icebreakers)
		v1.GET("/alumni/:id/suggestions", s.suggestions)
		v1.GET("/alumni/:id/briefing", s.briefing)

		v1.POST("/search", s.submitSearch)
		v1.GET("/search", s.currentSearch)
		v1.DELETE("/search", s.clearSearch)

		v1.POST("/mentorship/match", s.match)
		v1.POST("/bio/enhance", s.enhanceBio)
	}
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server starting", zap.String("address", addr), zap.Int("profiles", s.deps.Roster.Len()))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Debug("http request", fields...)
			return nil
		},
	})
}
