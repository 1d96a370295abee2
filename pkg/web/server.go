// Package web serves the latest generated snapshot and streams generation
// events over Server-Sent Events.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/neurograph/pkg/analysis"
	"github.com/ritzau/neurograph/pkg/export"
	"github.com/ritzau/neurograph/pkg/graph"
	"github.com/ritzau/neurograph/pkg/logging"
	"github.com/ritzau/neurograph/pkg/pubsub"
	"github.com/ritzau/neurograph/pkg/scenario"
)

// Regenerator produces a new snapshot on request
type Regenerator interface {
	Regenerate(ctx context.Context, seed uint64, reason string) (*analysis.Snapshot, error)
}

// SummaryResponse is the body of GET /api/summary
type SummaryResponse struct {
	*analysis.Summary
	Seed        uint64    `json:"seed,string"`
	RunID       string    `json:"run_id"`
	Path        string    `json:"path,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NodeResponse is the body of GET /api/nodes/{id}
type NodeResponse struct {
	Node  export.NodeElement   `json:"node"`
	Edges []export.EdgeElement `json:"edges"` // Incident edges in graph order

	Successors   []string        `json:"successors"`   // Distinct targets in graph order
	Predecessors []string        `json:"predecessors"` // Distinct sources in graph order
	OutDegree    int             `json:"out_degree"`
	InDegree     int             `json:"in_degree"`
	Outgoing     graph.EdgeKinds `json:"outgoing"` // Outgoing edges per edge type
}

// Server represents the web server
type Server struct {
	router      *mux.Router
	publisher   *pubsub.SSEPublisher
	snapshot    atomic.Pointer[analysis.Snapshot]
	regenerator Regenerator

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a server with no snapshot. Data endpoints answer 503 until
// SetSnapshot is called.
func NewServer() *Server {
	s := &Server{
		router:    mux.NewRouter(),
		publisher: pubsub.NewGenerationPublisher(),
	}
	s.setupRoutes()
	return s
}

// Publisher returns the publisher backing the SSE endpoints
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// SetSnapshot replaces the served snapshot. Requests in flight keep the one they started with.
func (s *Server) SetSnapshot(snapshot *analysis.Snapshot) {
	s.snapshot.Store(snapshot)
}

// SetRegenerator enables POST /api/generate
func (s *Server) SetRegenerator(r Regenerator) {
	s.regenerator = r
}

// Handler returns the router wrapped in the request logging middleware
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	// Pub/sub endpoints
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// Snapshot endpoints
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/scenario", s.handleScenario).Methods("GET")
	s.router.HandleFunc("/api/nodes/{id}", s.handleNode).Methods("GET")
	s.router.HandleFunc("/api/generate", s.handleGenerate).Methods("POST")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// current returns the snapshot or answers 503
func (s *Server) current(w http.ResponseWriter) *analysis.Snapshot {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot generated yet")
	}
	return snapshot
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicGeneration && topic != pubsub.TopicSnapshot {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown topic: %s", topic))
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	// Initial comment establishes the stream before the first event
	fmt.Fprintf(w, ": connected\n\n")
	flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "error writing SSE event", "error", err)
				return
			}
			flush()
		}
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snapshot := s.current(w)
	if snapshot == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := export.Encode(w, snapshot.Document); err != nil {
		logging.WarnContext(r.Context(), "failed to encode graph", "error", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snapshot := s.current(w)
	if snapshot == nil {
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		Summary:     snapshot.Summary,
		Seed:        snapshot.Seed,
		RunID:       snapshot.RunID.String(),
		Path:        snapshot.Path,
		GeneratedAt: snapshot.GeneratedAt,
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	snapshot := s.current(w)
	if snapshot == nil {
		return
	}

	data, err := scenario.Marshal(snapshot.Scenario)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(data); err != nil {
		logging.WarnContext(r.Context(), "failed to write scenario", "error", err)
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	snapshot := s.current(w)
	if snapshot == nil {
		return
	}

	id := mux.Vars(r)["id"]
	node, ok := snapshot.Graph.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node not found: %s", id))
		return
	}

	incident := snapshot.Graph.IncidentEdges(id)
	response := NodeResponse{
		Node:  export.NewNodeElement(node),
		Edges: make([]export.EdgeElement, 0, len(incident)),
	}
	for _, e := range incident {
		response.Edges = append(response.Edges, export.NewEdgeElement(e))
	}

	network := snapshot.Network
	if network == nil {
		network = graph.NewNetwork(snapshot.Graph)
	}
	response.Successors = nonNil(network.Successors(id))
	response.Predecessors = nonNil(network.Predecessors(id))
	response.OutDegree = network.OutDegree(id)
	response.InDegree = network.InDegree(id)
	response.Outgoing = network.OutgoingKinds(id)
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.regenerator == nil {
		writeError(w, http.StatusNotImplemented, "regeneration is not enabled")
		return
	}

	var seed uint64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid seed %q: must be a positive integer", raw))
			return
		}
		seed = parsed
	}

	snapshot, err := s.regenerator.Regenerate(r.Context(), seed, "api request")
	switch {
	case errors.Is(err, scenario.ErrInvalidConfig):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, pubsub.SnapshotInfo{
		Scenario: snapshot.Scenario.Name,
		Seed:     snapshot.Seed,
		RunID:    snapshot.RunID.String(),
		Nodes:    snapshot.Graph.NodeCount(),
		Edges:    snapshot.Graph.EdgeCount(),
		Path:     snapshot.Path,
		Changes:  snapshot.Changes.String(),
	})
}

// Start serves on port until Shutdown is called
func (s *Server) Start(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes the SSE streams and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.publisher.Close()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
