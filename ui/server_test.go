package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lcgwalk/adapters/memory"
	"lcgwalk/adapters/report"
	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal"
	"lcgwalk/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	return NewServer(memory.NewSessionRepository(), validation.DefaultValidationConfig(),
		WithLogger(internal.NewDiscardLogger()))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type validateResponse struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Attempt    int       `json:"attempt"`
	TrialSeed  int64     `json:"trial_seed"`
	Samples    []float64 `json:"samples"`
	Directions []string  `json:"directions"`
}

func validate(t *testing.T, s *Server, body string) validateResponse {
	t.Helper()
	w := do(t, s, http.MethodPost, "/v1/sequences/validate", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp validateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidate_Defaults(t *testing.T) {
	resp := validate(t, newTestServer(), "")

	assert.Equal(t, "accepted", resp.State)
	assert.Equal(t, 1, resp.Attempt)
	assert.Equal(t, int64(12345), resp.TrialSeed)
	require.Len(t, resp.Samples, 100)
	assert.InDelta(t, 0.65515, resp.Samples[0], 1e-5)
	assert.Equal(t, "right", resp.Directions[0])
}

func TestValidate_Overrides(t *testing.T) {
	resp := validate(t, newTestServer(), `{"seed": 127}`)
	assert.Equal(t, 2, resp.Attempt)
	assert.Equal(t, int64(128), resp.TrialSeed)

	resp = validate(t, newTestServer(), `{"multiplier": 0, "increment": 0, "max_attempts": 3}`)
	assert.Equal(t, "exhausted", resp.State)
	assert.Equal(t, 3, resp.Attempt)
	assert.Empty(t, resp.Samples)
}

func TestValidate_ConfigErrors(t *testing.T) {
	s := newTestServer()
	for _, body := range []string{
		`{"modulus": 0}`,
		`{"alpha": 1.5}`,
		`{"sample_count": 1}`,
		`{"max_attempts": 0}`,
		`{"seed": "abc"}`,
		`{"sample_count": 1099511627776}`,
		`{"max_attempts": 1099511627776}`,
		`{"sample_count": 1099511627776, "max_attempts": 1099511627776}`,
	} {
		w := do(t, s, http.MethodPost, "/v1/sequences/validate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestValidate_RequestLimits(t *testing.T) {
	s := NewServer(memory.NewSessionRepository(), validation.DefaultValidationConfig(),
		WithLogger(internal.NewDiscardLogger()), WithRequestLimits(200, 5))

	w := do(t, s, http.MethodPost, "/v1/sequences/validate", `{"sample_count": 201}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sample_count must be at most 200")

	w = do(t, s, http.MethodPost, "/v1/sequences/validate", `{"max_attempts": 6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "max_attempts must be at most 5")

	// the server default of 100 attempts is itself above the ceiling
	w = do(t, s, http.MethodPost, "/v1/sequences/validate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/v1/sequences/validate", `{"sample_count": 200, "max_attempts": 5}`)
	assert.Equal(t, http.StatusCreated, w.Code, "limits are inclusive")

	w = do(t, s, http.MethodPost, "/v1/surveys", `{"seeds": 2, "sample_count": 1000, "max_attempts": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionRoutes(t *testing.T) {
	s := newTestServer()
	created := validate(t, s, "")

	w := do(t, s, http.MethodGet, "/v1/sequences/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got validateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.Samples, got.Samples)

	w = do(t, s, http.MethodGet, "/v1/sequences/"+created.ID+"/artifact", "")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n")
	assert.Len(t, lines, 100)
	assert.Equal(t, "0.65515", lines[0])
	assert.Equal(t, `"`+report.Checksum(w.Body.Bytes())+`"`, w.Header().Get("ETag"))

	w = do(t, s, http.MethodGet, "/v1/sequences/"+created.ID+"/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(t, s, http.MethodGet, "/v1/sequences/"+created.ID+"/report?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Validation session")

	w = do(t, s, http.MethodGet, "/v1/sequences/"+created.ID+"/report?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/v1/sequences?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(t, s, http.MethodGet, "/v1/sequences?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionRoutes_Errors(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodGet, "/v1/sequences/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/v1/sequences/"+core.NewSessionID().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	exhausted := validate(t, s, `{"multiplier": 0, "increment": 0, "max_attempts": 2}`)
	w = do(t, s, http.MethodGet, "/v1/sequences/"+exhausted.ID+"/artifact", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetSession_HaltedShowsStopReason(t *testing.T) {
	repo := memory.NewSessionRepository()
	halted := sequence.NewSession(sequence.DefaultGeneratorConfig(), 100, 0.05, 100)
	halted.Attempt = 1
	halted.Halt(core.NewInvalidModulusError(0))
	require.NoError(t, repo.Save(context.Background(), halted))

	s := NewServer(repo, validation.DefaultValidationConfig(), WithLogger(internal.NewDiscardLogger()))
	w := do(t, s, http.MethodGet, "/v1/sequences/"+halted.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "exhausted", resp["state"])
	assert.Contains(t, resp["stop_reason"], "modulus must be greater than 0")

	w = do(t, s, http.MethodGet, "/v1/sequences/"+halted.ID.String()+"/artifact", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSurvey(t *testing.T) {
	s := NewServer(memory.NewSessionRepository(), validation.DefaultValidationConfig(),
		WithLogger(internal.NewDiscardLogger()), WithMaxSurveySeeds(10))

	w := do(t, s, http.MethodPost, "/v1/surveys", `{"seeds": 4, "parallelism": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(4), resp["sessions"])
	assert.Equal(t, resp["sessions"], resp["accepted"].(float64)+resp["exhausted"].(float64))

	w = do(t, s, http.MethodPost, "/v1/surveys", `{"seeds": 11}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/v1/surveys", `{"seeds": 2, "modulus": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
