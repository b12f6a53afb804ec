package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxai/internal/history"
	"inboxai/internal/logger"
	"inboxai/internal/summarize"
	pkgerrors "inboxai/pkg/errors"
)

type stubService struct {
	agents       map[string]*Agent
	records      []summarize.SummaryRecord
	runErr       error
	lastCriteria SummarizeRequest
}

func (s *stubService) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err)
	}
	return &Agent{ID: "new-id", OrgID: req.OrgID, Name: req.Name, Kind: kind, Config: req.Config}, nil
}

func (s *stubService) GetAgent(ctx context.Context, id string) (*Agent, error) {
	a, ok := s.agents[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("agent_id", id)
	}
	return a, nil
}

func (s *stubService) ListAgents(ctx context.Context, orgID string) ([]Agent, error) {
	var out []Agent
	for _, a := range s.agents {
		out = append(out, *a)
	}
	return out, nil
}

func (s *stubService) UpdateAgent(ctx context.Context, id string, req UpdateAgentRequest) (*Agent, error) {
	return s.GetAgent(ctx, id)
}

func (s *stubService) DeleteAgent(ctx context.Context, id string) error {
	if _, ok := s.agents[id]; !ok {
		return pkgerrors.ErrNotFound.WithDetail("agent_id", id)
	}
	return nil
}

func (s *stubService) Summarize(ctx context.Context, agentID string, req SummarizeRequest) ([]summarize.SummaryRecord, error) {
	s.lastCriteria = req
	if _, ok := s.agents[agentID]; !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("agent_id", agentID)
	}
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.records, nil
}

func (s *stubService) History(ctx context.Context, agentID string, limit int) ([]history.Digest, error) {
	if _, ok := s.agents[agentID]; !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("agent_id", agentID)
	}
	return []history.Digest{}, nil
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAgentEndpoint(t *testing.T) {
	router := setupRouter(&stubService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents", CreateAgentRequest{
		OrgID: "org-1",
		Name:  "inbox digest",
		Kind:  "email_summarizer",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var created Agent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, KindEmailSummarizer, created.Kind)
}

func TestCreateAgentEndpointValidation(t *testing.T) {
	router := setupRouter(&stubService{})

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "missing required fields", body: map[string]string{"name": "x"}},
		{name: "unknown kind", body: CreateAgentRequest{OrgID: "o", Name: "n", Kind: "slack_bot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/agents", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "VALIDATION_ERROR", resp["error_code"])
		})
	}
}

func TestGetAgentEndpointNotFound(t *testing.T) {
	router := setupRouter(&stubService{agents: map[string]*Agent{}})

	w := doJSON(t, router, http.MethodGet, "/api/v1/agents/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAgentsEndpointEmpty(t *testing.T) {
	router := setupRouter(&stubService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/agents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestDeleteAgentEndpoint(t *testing.T) {
	router := setupRouter(&stubService{agents: map[string]*Agent{
		"a-1": {ID: "a-1", Kind: KindEmailSummarizer},
	}})

	w := doJSON(t, router, http.MethodDelete, "/api/v1/agents/a-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSummarizeEndpoint(t *testing.T) {
	svc := &stubService{
		agents: map[string]*Agent{"a-1": {ID: "a-1", Kind: KindEmailSummarizer}},
		records: []summarize.SummaryRecord{
			{ID: "m1", Sender: "Alice", Subject: "Budget", Summary: "a summary", EmailCount: 2, Status: "success"},
		},
	}
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents/a-1/summarize", SummarizeRequest{
		CriteriaType: "last_24_hours",
		Count:        10,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var records []summarize.SummaryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "a summary", records[0].Summary)
	assert.Equal(t, 2, records[0].EmailCount)
}

func TestSummarizeEndpointTolerantCount(t *testing.T) {
	tests := []struct {
		name  string
		count interface{}
		want  Count
	}{
		{name: "string digits", count: "25", want: 25},
		{name: "non-numeric string", count: "not-a-number", want: 10},
		{name: "omitted", count: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{agents: map[string]*Agent{
				"a-1": {ID: "a-1", Kind: KindEmailSummarizer},
			}}
			router := setupRouter(svc)

			body := map[string]interface{}{"criteria_type": "last_24_hours"}
			if tt.count != nil {
				body["count"] = tt.count
			}

			w := doJSON(t, router, http.MethodPost, "/api/v1/agents/a-1/summarize", body)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, svc.lastCriteria.Count)
		})
	}
}

func TestSummarizeEndpointMissingCriteria(t *testing.T) {
	router := setupRouter(&stubService{agents: map[string]*Agent{
		"a-1": {ID: "a-1", Kind: KindEmailSummarizer},
	}})

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents/a-1/summarize", map[string]int{"count": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummarizeEndpointAuthFailureGuidance(t *testing.T) {
	svc := &stubService{
		agents: map[string]*Agent{"a-1": {ID: "a-1", Kind: KindEmailSummarizer}},
		runErr: pkgerrors.ErrAuth,
	}
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents/a-1/summarize", SummarizeRequest{
		CriteriaType: "last_24_hours",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AUTH_ERROR", resp["error_code"])
	assert.Contains(t, resp["error"], "reconnect")
}

func TestHistoryEndpoint(t *testing.T) {
	router := setupRouter(&stubService{agents: map[string]*Agent{
		"a-1": {ID: "a-1", Kind: KindEmailSummarizer},
	}})

	w := doJSON(t, router, http.MethodGet, "/api/v1/agents/a-1/history?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
