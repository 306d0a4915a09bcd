package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/daniacca/stochchem/internal/circuits"
	"github.com/daniacca/stochchem/internal/ssa"
)

// simulateRequest is the body of POST /run and POST /ensemble. Exactly one of
// Network and Circuit must be set; zero DT and Samples take the CLI defaults.
type simulateRequest struct {
	Network    *ssa.NetworkConfig `json:"network,omitempty"`
	Circuit    string             `json:"circuit,omitempty"`
	Seed       uint64             `json:"seed"`
	DT         float64            `json:"dt,omitempty"`
	Samples    int                `json:"samples,omitempty"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Initial    map[string]int64   `json:"initial,omitempty"`
	MaxEvents  uint64             `json:"max_events,omitempty"`
	MaxTime    float64            `json:"max_time,omitempty"`
	Runs       int                `json:"runs,omitempty"`
	MeanOnly   bool               `json:"mean_only,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /circuits
func (s *Server) handleListCircuits(w http.ResponseWriter, r *http.Request) {
	all := circuits.All()
	infos := make([]circuitInfo, 0, len(all))
	for _, c := range all {
		cfg := c.Builder().Config()
		infos = append(infos, circuitInfo{
			Name:        c.Name,
			Description: c.Description,
			Species:     len(cfg.Species),
			Channels:    len(cfg.Channels),
		})
	}
	respondJSON(w, http.StatusOK, infos)
}

// GET /circuits/{name}
// Returns the circuit as a network configuration.
func (s *Server) handleGetCircuit(w http.ResponseWriter, r *http.Request) {
	c, ok := circuits.Lookup(r.PathValue("name"))
	if !ok {
		http.Error(w, "circuit not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c.Builder().Config())
}

// POST /validate
// Body: NetworkConfig JSON
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cfg ssa.NetworkConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid network json: "+err.Error(), http.StatusBadRequest)
		return
	}

	res := validateResult{Valid: true, Network: cfg.Name}
	net, err := ssa.BuildNetworkFromConfig(cfg)
	if err == nil {
		_, err = ssa.InitialState(net, cfg)
	}
	if err != nil {
		res.Valid = false
		var verr *ssa.ValidationError
		if errors.As(err, &verr) {
			res.Issues = verr.Issues
		} else {
			res.Issues = []string{err.Error()}
		}
		respondJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	res.Species = net.NumSpecies()
	res.Channels = net.NumChannels()
	respondJSON(w, http.StatusOK, res)
}

// POST /run
// Body: simulateRequest JSON; responds with the run result.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	req, model, ok := s.decodeModel(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := ssa.Run(ctx, model.Network, model.Initial, model.Times, req.Seed, model.Options...)
	if err != nil {
		s.simulationError(w, model.Network.Name, err)
		return
	}
	s.logger.Infof("Run finished: network=%s status=%s events=%d", model.Network.Name, res.Status, res.Events)
	respondJSON(w, http.StatusOK, res)
}

// POST /ensemble
// Body: simulateRequest JSON; responds with the ensemble, or its summary
// when mean_only is set.
func (s *Server) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	req, model, ok := s.decodeModel(w, r)
	if !ok {
		return
	}
	if req.Runs == 0 {
		req.Runs = 100
	}
	if req.Runs < 0 || req.Runs > s.maxRuns {
		http.Error(w, fmt.Sprintf("runs must be between 1 and %d", s.maxRuns), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	ens, err := ssa.RunEnsemble(ctx, ssa.EnsembleSpec{
		Network: model.Network,
		Initial: model.Initial,
		Times:   model.Times,
		Runs:    req.Runs,
		Seed:    req.Seed,
		Options: model.Options,
	}, ssa.EnsembleOptions{Workers: s.workers, Logger: s.logger})
	if err != nil {
		s.simulationError(w, model.Network.Name, err)
		return
	}

	if !req.MeanOnly {
		respondJSON(w, http.StatusOK, ens)
		return
	}
	statuses := make(map[string]int)
	for st, n := range ens.StatusCounts() {
		statuses[st.String()] = n
	}
	respondJSON(w, http.StatusOK, ensembleSummary{
		Network:  model.Network.Name,
		Runs:     req.Runs,
		Seed:     req.Seed,
		Statuses: statuses,
		Mean:     ens.Mean(),
	})
}

// decodeModel reads a simulateRequest and builds its model. On failure it
// has already written the error response.
func (s *Server) decodeModel(w http.ResponseWriter, r *http.Request) (simulateRequest, *Model, bool) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return req, nil, false
	}
	if req.DT == 0 {
		req.DT = 1
	}
	if req.Samples == 0 {
		req.Samples = 101
	}
	if !(req.DT > 0) || req.Samples < 0 || req.Samples > s.maxSamples {
		http.Error(w, fmt.Sprintf("dt must be positive and samples between 1 and %d", s.maxSamples), http.StatusBadRequest)
		return req, nil, false
	}

	var (
		net   *ssa.Network
		state ssa.State
		err   error
	)
	switch {
	case req.Network != nil && req.Circuit != "":
		err = fmt.Errorf("network and circuit are mutually exclusive")
	case req.Network != nil:
		net, err = ssa.BuildNetworkFromConfig(*req.Network)
		if err == nil {
			state, err = ssa.InitialState(net, *req.Network)
		}
	case req.Circuit != "":
		net, state, err = circuits.Build(req.Circuit)
	default:
		err = fmt.Errorf("one of network or circuit is required")
	}
	if err != nil {
		http.Error(w, "cannot build network: "+err.Error(), http.StatusBadRequest)
		return req, nil, false
	}

	cfg := SimConfig{DT: req.DT, Samples: req.Samples, MaxEvents: req.MaxEvents, MaxTime: req.MaxTime}
	model, err := newModel(net, state, cfg, req.Parameters, req.Initial, s.logger)
	if err != nil {
		http.Error(w, "cannot build model: "+err.Error(), http.StatusBadRequest)
		return req, nil, false
	}
	return req, model, true
}

// simulationError maps engine errors to HTTP statuses.
func (s *Server) simulationError(w http.ResponseWriter, network string, err error) {
	switch {
	case errors.Is(err, ssa.ErrInvalidNetwork), errors.Is(err, ssa.ErrInvalidState), errors.Is(err, ssa.ErrInvalidSampleTimes):
		http.Error(w, "invalid simulation: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warnf("Simulation timed out: network=%s timeout=%s", network, s.timeout)
		http.Error(w, "simulation timed out", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled):
		s.logger.Debugf("Simulation canceled by client: network=%s", network)
	default:
		s.logger.Errorf("Simulation failed: network=%s error=%v", network, err)
		http.Error(w, "simulation failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
