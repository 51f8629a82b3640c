// Package api exposes the catalog over an HTTP JSON API so the index can be
// shared by a team instead of living in one editor. All mutations funnel
// through the catalog's writer lock; the server adds no locking of its own.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/logger"
)

// ServerConfig holds the listen address configuration.
type ServerConfig struct {
	Host string
	Port int
}

// Validate checks the listen configuration.
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server serves the catalog API.
type Server struct {
	router  *mux.Router
	catalog *catalog.Catalog
	config  *ServerConfig
	server  *http.Server
}

// NewServer creates a catalog API server.
func NewServer(cat *catalog.Catalog, config *ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router:  mux.NewRouter(),
		catalog: cat,
		config:  config,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/agents", s.handleListAgents).Methods("GET")
	api.HandleFunc("/agents", s.handleRegisterAgent).Methods("POST")
	api.HandleFunc("/agents/{id}", s.handleGetAgent).Methods("GET")
	api.HandleFunc("/agents/{id}", s.handleUpdateAgent).Methods("PATCH")
	api.HandleFunc("/agents/{id}", s.handleRemoveAgent).Methods("DELETE")
	api.HandleFunc("/agents/{id}/clusters", s.handleClustersFor).Methods("GET")

	api.HandleFunc("/clusters", s.handleListClusters).Methods("GET")
	api.HandleFunc("/clusters", s.handleCreateCluster).Methods("POST")
	api.HandleFunc("/clusters/{name}", s.handleGetCluster).Methods("GET")
	api.HandleFunc("/clusters/{name}", s.handleDeleteCluster).Methods("DELETE")
	api.HandleFunc("/clusters/{name}/members/{id}", s.handleAddMember).Methods("PUT")
	api.HandleFunc("/clusters/{name}/members/{id}", s.handleRemoveMember).Methods("DELETE")

	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/validate", s.handleValidate).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	s.router.Use(s.loggingMiddleware)
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	logger.G(ctx).WithField("address", address).Info("Starting catalog API server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("Catalog API server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.statusCode,
			"duration": time.Since(start),
		}).Info("HTTP request")
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
