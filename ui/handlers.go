package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"lcgwalk/adapters/report"
	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal/errors"
	"lcgwalk/internal/validation"

	"github.com/gin-gonic/gin"
)

// searchParams overrides the server defaults; nil fields keep them
type searchParams struct {
	Multiplier  *int64   `json:"multiplier"`
	Increment   *int64   `json:"increment"`
	Modulus     *int64   `json:"modulus"`
	Seed        *int64   `json:"seed"`
	SampleCount *int     `json:"sample_count"`
	Alpha       *float64 `json:"alpha"`
	MaxAttempts *int     `json:"max_attempts"`
}

func (p searchParams) apply(cfg validation.ValidationConfig) validation.ValidationConfig {
	if p.Multiplier != nil {
		cfg.Generator.Multiplier = *p.Multiplier
	}
	if p.Increment != nil {
		cfg.Generator.Increment = *p.Increment
	}
	if p.Modulus != nil {
		cfg.Generator.Modulus = *p.Modulus
	}
	if p.Seed != nil {
		cfg.Generator.Seed = *p.Seed
	}
	if p.SampleCount != nil {
		cfg.SampleCount = *p.SampleCount
	}
	if p.Alpha != nil {
		cfg.SignificanceLevel = *p.Alpha
	}
	if p.MaxAttempts != nil {
		cfg.MaxAttempts = *p.MaxAttempts
	}
	return cfg
}

// checkLimits rejects searches larger than the server allows. Validate only
// enforces lower bounds.
func (s *Server) checkLimits(cfg validation.ValidationConfig) error {
	if cfg.SampleCount > s.maxSampleCount {
		return errors.InvalidInput(fmt.Sprintf("sample_count must be at most %d, got %d", s.maxSampleCount, cfg.SampleCount))
	}
	if cfg.MaxAttempts > s.maxAttempts {
		return errors.InvalidInput(fmt.Sprintf("max_attempts must be at most %d, got %d", s.maxAttempts, cfg.MaxAttempts))
	}
	return nil
}

type surveyRequest struct {
	searchParams
	Seeds       int `json:"seeds"`
	Parallelism int `json:"parallelism"`
}

// sessionView is the JSON shape of a session
type sessionView struct {
	*sequence.Session
	Samples    []float64 `json:"samples,omitempty"`
	Directions []string  `json:"directions,omitempty"`
}

func (s *Server) view(session *sequence.Session) sessionView {
	v := sessionView{Session: session}
	if seq, ok := session.Sequence(); ok {
		v.Samples = seq.Values()
		v.Directions = make([]string, len(v.Samples))
		for i, x := range v.Samples {
			v.Directions[i] = s.mapper.Map(x).String()
		}
	}
	return v
}

// POST /v1/sequences/validate
func (s *Server) handleValidate(c *gin.Context) {
	var params searchParams
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			s.respondError(c, errors.InvalidInput("malformed request body: "+err.Error()))
			return
		}
	}

	cfg := params.apply(s.defaults)
	if err := s.checkLimits(cfg); err != nil {
		s.respondError(c, err)
		return
	}

	session, err := validation.Run(cfg, validation.WithLogger(s.logger))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.repo.Save(c.Request.Context(), session); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.view(session))
}

// GET /v1/sequences
func (s *Server) handleListSessions(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, errors.InvalidInput("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	sessions, err := s.repo.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (s *Server) loadSession(c *gin.Context) (*sequence.Session, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return nil, false
	}
	session, err := s.repo.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return session, true
}

// GET /v1/sequences/:id
func (s *Server) handleGetSession(c *gin.Context) {
	session, ok := s.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.view(session))
}

// GET /v1/sequences/:id/artifact
func (s *Server) handleArtifact(c *gin.Context) {
	session, ok := s.loadSession(c)
	if !ok {
		return
	}
	seq, accepted := session.Sequence()
	if !accepted {
		s.respondError(c, errors.WithCode(errors.CodeValidationError, session.Err()))
		return
	}
	body := report.FormatArtifact(seq, s.decimals)
	c.Header("ETag", `"`+report.Checksum(body)+`"`)
	c.Header("Content-Disposition", `attachment; filename="ri_numbers.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

// GET /v1/sequences/:id/report?format=html|markdown
func (s *Server) handleReport(c *gin.Context) {
	session, ok := s.loadSession(c)
	if !ok {
		return
	}
	switch c.DefaultQuery("format", "html") {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(session)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(session))
	default:
		s.respondError(c, errors.InvalidInput("format must be html or markdown"))
	}
}

// POST /v1/surveys
func (s *Server) handleSurvey(c *gin.Context) {
	var req surveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("malformed request body: "+err.Error()))
		return
	}
	if req.Seeds <= 0 || req.Seeds > s.maxSurveySeeds {
		s.respondError(c, errors.InvalidInput("seeds must be between 1 and "+strconv.Itoa(s.maxSurveySeeds)))
		return
	}

	// consecutive searches start one attempt budget apart so they never overlap
	base := req.apply(s.defaults)
	if err := s.checkLimits(base); err != nil {
		s.respondError(c, err)
		return
	}
	seeds := make([]int64, req.Seeds)
	for i := range seeds {
		seeds[i] = base.Generator.Seed + int64(i)*int64(base.MaxAttempts)
	}

	executor := validation.NewConcurrentExecutor(req.Parallelism, validation.WithLogger(s.logger))
	result, err := executor.Survey(c.Request.Context(), base, seeds)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":        len(result.Sessions),
		"accepted":        result.Accepted,
		"exhausted":       result.Exhausted,
		"acceptance_rate": result.AcceptanceRate(),
		"mean_attempts":   result.MeanAttempts(),
		"max_attempts":    result.MaxAttempts,
		"elapsed_ms":      result.Elapsed.Milliseconds(),
	})
}
