package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

func newTestServer(t *testing.T) (*Server, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New()
	s, err := NewServer(cat, &ServerConfig{Host: "localhost", Port: 8080})
	require.NoError(t, err)
	return s, cat
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServerConfig_Validate(t *testing.T) {
	assert.Error(t, (&ServerConfig{Host: "", Port: 8080}).Validate())
	assert.Error(t, (&ServerConfig{Host: "localhost", Port: 0}).Validate())
	assert.Error(t, (&ServerConfig{Host: "localhost", Port: 70000}).Validate())
	assert.NoError(t, (&ServerConfig{Host: "localhost", Port: 8080}).Validate())
}

func TestAgentLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "POST", "/api/agents",
		`{"id": "cloud-architect", "summary": "Designs cloud infrastructure", "file_ref": "cloud.md"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, "GET", "/api/agents/cloud-architect", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var agent catalog.AgentRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agent))
	assert.Equal(t, "Designs cloud infrastructure", agent.Summary)

	rec = doRequest(t, s, "PATCH", "/api/agents/cloud-architect", `{"summary": "Updated summary"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agent))
	assert.Equal(t, "Updated summary", agent.Summary)

	rec = doRequest(t, s, "DELETE", "/api/agents/cloud-architect", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, "GET", "/api/agents/cloud-architect", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	s, cat := newTestServer(t)
	require.NoError(t, cat.RegisterAgent("taken-id", "summary", "ref.md"))
	require.NoError(t, cat.CreateCluster("Some Cluster", "desc"))
	require.NoError(t, cat.AddMember("Some Cluster", "taken-id"))

	// Duplicate id conflicts.
	rec := doRequest(t, s, "POST", "/api/agents", `{"id": "taken-id", "summary": "again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Empty summary is a bad request.
	rec = doRequest(t, s, "POST", "/api/agents", `{"id": "new-id", "summary": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Removing a referenced agent conflicts under the restrict policy.
	rec = doRequest(t, s, "DELETE", "/api/agents/taken-id", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown cluster 404s.
	rec = doRequest(t, s, "GET", "/api/clusters/Nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMembershipEndpoints(t *testing.T) {
	s, cat := newTestServer(t)
	require.NoError(t, cat.RegisterAgent("ml-pipeline-engineer", "Builds ML pipelines", "ml.md"))
	require.NoError(t, cat.CreateCluster("Data Engineering", "data work"))
	require.NoError(t, cat.CreateCluster("AI Development", "ai work"))

	// PUT is idempotent.
	for i := 0; i < 2; i++ {
		rec := doRequest(t, s, "PUT", "/api/clusters/Data%20Engineering/members/ml-pipeline-engineer", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := doRequest(t, s, "PUT", "/api/clusters/AI%20Development/members/ml-pipeline-engineer", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, "GET", "/api/agents/ml-pipeline-engineer/clusters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Clusters     []string `json:"clusters"`
		CrossCluster bool     `json:"cross_cluster"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CrossCluster)
	assert.Len(t, resp.Clusters, 2)

	rec = doRequest(t, s, "DELETE", "/api/clusters/Data%20Engineering/members/ml-pipeline-engineer", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	members, err := cat.MembersOf("Data Engineering")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestStatsAndValidateEndpoints(t *testing.T) {
	s, cat := newTestServer(t)
	require.NoError(t, cat.RegisterAgent("orphan", "belongs nowhere", "o.md"))
	require.NoError(t, cat.CreateCluster("Empty Cluster", "no members"))

	rec := doRequest(t, s, "GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats catalog.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalAgents)
	assert.Equal(t, 1, stats.TotalClusters)

	rec = doRequest(t, s, "GET", "/api/validate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		Count  int             `json:"count"`
		Issues []catalog.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Count)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
