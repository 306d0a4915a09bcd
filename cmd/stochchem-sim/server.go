package main

import (
	"net/http"
	"time"
)

// Server is the HTTP API around the simulator. Every request builds its own
// network and engines, so handlers share nothing mutable.
type Server struct {
	logger     *Logger
	workers    int
	maxRuns    int
	maxSamples int
	timeout    time.Duration
}

// NewServer creates a new server instance
func NewServer(logger *Logger) *Server {
	return &Server{
		logger:     logger,
		maxRuns:    10000,
		maxSamples: 100000,
		timeout:    60 * time.Second,
	}
}

// SetWorkers bounds the concurrent runs of one ensemble request; 0 means
// GOMAXPROCS.
func (s *Server) SetWorkers(workers int) {
	s.workers = workers
}

// SetLimits sets the largest ensemble and sample grid a request may ask for.
func (s *Server) SetLimits(maxRuns, maxSamples int) {
	s.maxRuns = maxRuns
	s.maxSamples = maxSamples
}

// SetTimeout sets the wall-clock limit for one request.
func (s *Server) SetTimeout(timeout time.Duration) {
	s.timeout = timeout
}

// Routes returns the API handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /circuits", s.handleListCircuits)
	mux.HandleFunc("GET /circuits/{name}", s.handleGetCircuit)
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("POST /ensemble", s.handleEnsemble)
	return mux
}
