package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope"
	"github.com/cstaulbee/quickscope/internal/adapters/httpapi"
	"github.com/cstaulbee/quickscope/internal/adapters/memory"
)

const surveyFlow = `
id: survey_v1
start: welcome
stages:
  - id: welcome
    type: message
    prompt: "Hi there."
    next: name
  - id: name
    type: questions
    next: end
    questions:
      - id: q_name
        ask: "What should I call you?"
        save_to: profile.name
  - id: end
    type: message
    prompt: "Nice to meet you, {{profile.name}}."
`

func newHandler(t *testing.T, opts ...httpapi.Option) http.Handler {
	t.Helper()
	source := memory.NewSource()
	source.Add("survey_v1", []byte(surveyFlow))
	return httpapi.NewHandler(quickscope.New(source), opts...)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), into))
}

func TestServer_Health(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	decode(t, rr, &resp)
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_ListFlows(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodGet, "/flows", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string][]string
	decode(t, rr, &resp)
	assert.Equal(t, []string{"survey_v1"}, resp["flows"])
}

func TestServer_InterviewRoundTrip(t *testing.T) {
	h := newHandler(t)

	rr := do(t, h, http.MethodPost, "/sessions", map[string]string{"flow_id": "survey_v1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var start struct {
		SessionID string `json:"session_id"`
		Output    string `json:"output"`
		Done      bool   `json:"done"`
	}
	decode(t, rr, &start)
	require.NotEmpty(t, start.SessionID)
	assert.Contains(t, start.Output, "What should I call you?")
	assert.False(t, start.Done)

	rr = do(t, h, http.MethodPost, "/sessions/"+start.SessionID+"/turns", map[string]string{"input": "Ada"})
	require.Equal(t, http.StatusOK, rr.Code)

	var turn struct {
		Output string `json:"output"`
		Done   bool   `json:"done"`
		Error  string `json:"error"`
	}
	decode(t, rr, &turn)
	assert.Empty(t, turn.Error)
	assert.True(t, turn.Done)
	assert.Contains(t, turn.Output, "Nice to meet you, Ada.")

	rr = do(t, h, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sessions map[string][]string
	decode(t, rr, &sessions)
	assert.Contains(t, sessions["sessions"], start.SessionID)

	rr = do(t, h, http.MethodGet, "/sessions/"+start.SessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "profile")

	rr = do(t, h, http.MethodDelete, "/sessions/"+start.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/sessions/"+start.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_StartUnknownFlow(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodPost, "/sessions", map[string]string{"flow_id": "nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_StartMissingFlowID(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodPost, "/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_TurnUnknownSession(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodPost, "/sessions/missing/turns", map[string]string{"input": "hi"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_OversizedInput(t *testing.T) {
	h := newHandler(t)

	rr := do(t, h, http.MethodPost, "/sessions", map[string]string{"flow_id": "survey_v1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var start struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rr, &start)

	big := strings.Repeat("a", 5000)
	rr = do(t, h, http.MethodPost, "/sessions/"+start.SessionID+"/turns", map[string]string{"input": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := httpapi.NewMetrics(reg)
	h := newHandler(t, httpapi.WithMetrics(m))

	rr := do(t, h, http.MethodPost, "/sessions", map[string]string{"flow_id": "survey_v1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "quickscope_turns_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "expected quickscope_turns_total to be registered")
}

func TestMetrics_HooksCountStages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := httpapi.NewMetrics(reg)

	source := memory.NewSource()
	source.Add("survey_v1", []byte(surveyFlow))
	e := quickscope.New(source, quickscope.WithLifecycleHooks(m.Hooks()))
	h := httpapi.NewHandler(e, httpapi.WithMetrics(m))

	rr := do(t, h, http.MethodPost, "/sessions", map[string]string{"flow_id": "survey_v1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	families, err := reg.Gather()
	require.NoError(t, err)

	entries := 0.0
	for _, mf := range families {
		if mf.GetName() == "quickscope_stage_entries_total" {
			for _, metric := range mf.GetMetric() {
				entries += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Greater(t, entries, 0.0)
}
