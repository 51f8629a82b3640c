package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeCatalogError maps typed catalog errors onto HTTP status codes.
func (s *Server) writeCatalogError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		notFound   *catalog.NotFoundError
		dupID      *catalog.DuplicateIDError
		dupCluster *catalog.DuplicateClusterError
		invalid    *catalog.InvalidRecordError
		referenced *catalog.ReferencedByClusterError
	)
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &dupID), errors.As(err, &dupCluster), errors.As(err, &referenced):
		status = http.StatusConflict
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	agents := []catalog.AgentRecord{}
	for rec := range s.catalog.Agents() {
		agents = append(agents, rec)
	}
	s.writeJSON(w, http.StatusOK, agents)
}

type registerAgentRequest struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	FileRef string `json:"file_ref"`
}

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.catalog.RegisterAgent(req.ID, req.Summary, req.FileRef); err != nil {
		s.writeCatalogError(w, err)
		return
	}

	rec, err := s.catalog.GetAgent(req.ID)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetAgent(mux.Vars(r)["id"])
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

type updateAgentRequest struct {
	Summary *string `json:"summary,omitempty"`
	FileRef *string `json:"file_ref,omitempty"`
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	update := catalog.AgentUpdate{Summary: req.Summary, FileRef: req.FileRef}
	if err := s.catalog.UpdateAgent(id, update); err != nil {
		s.writeCatalogError(w, err)
		return
	}

	rec, err := s.catalog.GetAgent(id)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRemoveAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.RemoveAgent(mux.Vars(r)["id"]); err != nil {
		s.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClustersFor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.writeJSON(w, http.StatusOK, map[string]any{
		"agent_id":      id,
		"clusters":      s.catalog.ClustersFor(id),
		"cross_cluster": s.catalog.IsCrossCluster(id),
	})
}

func (s *Server) handleListClusters(w http.ResponseWriter, _ *http.Request) {
	clusters := []catalog.ClusterRecord{}
	for rec := range s.catalog.Clusters() {
		clusters = append(clusters, rec)
	}
	s.writeJSON(w, http.StatusOK, clusters)
}

type createClusterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCluster(w http.ResponseWriter, r *http.Request) {
	var req createClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.catalog.CreateCluster(req.Name, req.Description); err != nil {
		s.writeCatalogError(w, err)
		return
	}

	rec, err := s.catalog.GetCluster(req.Name)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetCluster(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetCluster(mux.Vars(r)["name"])
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteCluster(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteCluster(mux.Vars(r)["name"]); err != nil {
		s.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.catalog.AddMember(vars["name"], vars["id"]); err != nil {
		s.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.catalog.RemoveMember(vars["name"], vars["id"]); err != nil {
		s.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Statistics())
}

func (s *Server) handleValidate(w http.ResponseWriter, _ *http.Request) {
	issues := s.catalog.Validate()
	if issues == nil {
		issues = []catalog.Issue{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"issues": issues,
		"count":  len(issues),
	})
}
