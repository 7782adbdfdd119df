package ui

import (
	"net/http"

	"lcgwalk/internal"
	"lcgwalk/internal/validation"
	"lcgwalk/internal/walk"
	"lcgwalk/ports"

	"github.com/gin-gonic/gin"
)

// Server exposes the validation/reporting mode over HTTP
type Server struct {
	router   *gin.Engine
	repo     ports.SessionRepository
	defaults validation.ValidationConfig
	mapper   walk.Mapper
	decimals int
	logger   *internal.Logger

	maxSurveySeeds int
	maxSampleCount int
	maxAttempts    int
}

// Request ceilings used when the server is built without WithRequestLimits.
// A search costs up to maxAttempts * sampleCount generated values and runs to
// completion once started.
const (
	DefaultMaxSampleCount = 100000
	DefaultMaxAttempts    = 10000
)

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request and error logger
func WithLogger(l *internal.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMapper sets the mapper used to annotate samples with directions
func WithMapper(m walk.Mapper) Option { return func(s *Server) { s.mapper = m } }

// WithDecimals sets the precision of the text artifact
func WithDecimals(d int) Option { return func(s *Server) { s.decimals = d } }

// WithMaxSurveySeeds caps how many seeds one survey request may ask for
func WithMaxSurveySeeds(n int) Option { return func(s *Server) { s.maxSurveySeeds = n } }

// WithRequestLimits caps sample_count and max_attempts per search. Values <= 0
// keep the defaults.
func WithRequestLimits(maxSampleCount, maxAttempts int) Option {
	return func(s *Server) {
		if maxSampleCount > 0 {
			s.maxSampleCount = maxSampleCount
		}
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
	}
}

// NewServer creates a new web server instance. defaults fills every
// parameter a validate request leaves out.
func NewServer(repo ports.SessionRepository, defaults validation.ValidationConfig, opts ...Option) *Server {
	s := &Server{
		router:         gin.New(),
		repo:           repo,
		defaults:       defaults,
		mapper:         walk.DefaultMapper(),
		decimals:       5,
		logger:         internal.DefaultLogger,
		maxSurveySeeds: 1000,
		maxSampleCount: DefaultMaxSampleCount,
		maxAttempts:    DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("http")

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/v1")
	{
		v1.POST("/sequences/validate", s.handleValidate)
		v1.GET("/sequences", s.handleListSessions)
		v1.GET("/sequences/:id", s.handleGetSession)
		v1.GET("/sequences/:id/artifact", s.handleArtifact)
		v1.GET("/sequences/:id/report", s.handleReport)
		v1.POST("/surveys", s.handleSurvey)
	}
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on addr
func (s *Server) Start(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}
