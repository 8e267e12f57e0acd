package main

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"sync"
)

// Server owns HTTP handlers and shared application state.
//
// Why separate this from the network?
// - MLP/Trainer are "autodiff math + parameters."
// - Server is "request handling + lifecycle/state wiring."
type Server struct {
	mu       sync.RWMutex
	net      *MLP
	trainer  *Trainer
	lastRoot *Value
}

// NewServer creates an empty API server.
func NewServer() *Server {
	return &Server{}
}

// RegisterRoutes attaches all endpoints to the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/init", s.handleInit)
	mux.HandleFunc("/api/train", s.handleTrain)
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/api/inspect", s.handleInspect)
}

// writeJSON is a helper to consistently send JSON responses.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeOptionalJSON decodes JSON when a body is present.
// Empty bodies are treated as "use defaults" rather than errors.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.LayerSizes) < 2 {
		http.Error(w, "layer_sizes needs at least [inputs, outputs]", http.StatusBadRequest)
		return
	}
	act, err := ParseActivation(req.Activation)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lr := req.LearningRate
	if lr <= 0 {
		lr = 0.05
	}

	rng := rand.New(rand.NewSource(req.Seed))
	net, err := NewMLP(rng, req.LayerSizes[0], req.LayerSizes[1:], act)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	trainer, err := NewTrainer(net, lr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.net = net
	s.trainer = trainer
	s.lastRoot = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, InitResponse{
		Status:     "initialized",
		Params:     len(net.Parameters()),
		Activation: act.String(),
	})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Steps <= 0 {
		req.Steps = 1
	}

	// Exclusive lock: training mutates parameters in place.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trainer == nil {
		http.Error(w, "network not initialized", http.StatusBadRequest)
		return
	}

	losses, root, err := s.trainer.Run(req.Samples, req.Steps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.lastRoot = root

	writeJSON(w, http.StatusOK, TrainResponse{
		Steps:     req.Steps,
		Losses:    losses,
		FinalLoss: losses[len(losses)-1],
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.net == nil {
		http.Error(w, "network not initialized", http.StatusBadRequest)
		return
	}

	preds, err := s.net.Forward(req.Inputs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	outputs := make([]float64, len(preds))
	for i, p := range preds {
		outputs[i] = p.Data
	}
	writeJSON(w, http.StatusOK, PredictResponse{Outputs: outputs})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.net == nil {
		http.Error(w, "network not initialized", http.StatusBadRequest)
		return
	}

	resp := InspectResponse{RoleCounts: map[string]int{}}
	if s.lastRoot != nil {
		for role, n := range RoleCounts(s.lastRoot) {
			resp.RoleCounts[role.String()] = n
		}
	}
	for _, p := range s.net.Parameters() {
		resp.Parameters = append(resp.Parameters, ParamInfo{Value: p.Data, Grad: p.Grad})
	}
	writeJSON(w, http.StatusOK, resp)
}
