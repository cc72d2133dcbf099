package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"mycelia/internal/codec"
	"mycelia/internal/network"
	"mycelia/internal/propagation"
)

// NetworkHandler handles the network API requests
type NetworkHandler struct {
	engine *network.Manager
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(engine *network.Manager) *NetworkHandler {
	return &NetworkHandler{engine: engine}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetState returns the full network snapshot plus current stats
func (h *NetworkHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.GetState(), http.StatusOK)
}

// GetStats returns the latest network statistics
func (h *NetworkHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.RefreshStats(), http.StatusOK)
}

// ListNodes returns all nodes
func (h *NetworkHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.GetAllNodes(), http.StatusOK)
}

// FindNodes returns nodes matching the posted criteria
func (h *NetworkHandler) FindNodes(w http.ResponseWriter, r *http.Request) {
	var criteria network.FindCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, h.engine.FindNodes(criteria), http.StatusOK)
}

// GetNode returns a single node
func (h *NetworkHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/nodes/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	node := h.engine.GetNode(id)
	if node == nil {
		h.writeError(w, "Not found", "node "+id+" does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// CreateNode creates a new node
func (h *NetworkHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var params network.NodeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	node := h.engine.CreateNode(params)
	h.writeJSON(w, node, http.StatusCreated)
}

// UpdateNode applies a partial update to an existing node
func (h *NetworkHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/nodes/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	var update network.NodeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	node := h.engine.UpdateNode(id, update)
	if node == nil {
		h.writeError(w, "Not found", "node "+id+" does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode removes a node and its hyphae
func (h *NetworkHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/nodes/")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	if !h.engine.RemoveNode(id) {
		h.writeError(w, "Not found", "node "+id+" does not exist", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetNodeHyphae returns all hyphae attached to a node
func (h *NetworkHandler) GetNodeHyphae(w http.ResponseWriter, r *http.Request) {
	path := extractPathParam(r.URL.Path, "/api/nodes/")
	id := strings.TrimSuffix(path, "/hyphae")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, h.engine.GetNodeHyphae(id), http.StatusOK)
}

// CreateHypha connects two nodes
func (h *NetworkHandler) CreateHypha(w http.ResponseWriter, r *http.Request) {
	var params network.HyphaParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	hypha := h.engine.CreateHypha(params)
	if hypha == nil {
		h.writeError(w, "Invalid hypha", "both endpoints must exist", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, hypha, http.StatusCreated)
}

// GetHypha returns a single hypha
func (h *NetworkHandler) GetHypha(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/hyphae/")
	if id == "" {
		h.writeError(w, "Invalid hypha ID", "Hypha ID is required", http.StatusBadRequest)
		return
	}

	hypha := h.engine.GetHypha(id)
	if hypha == nil {
		h.writeError(w, "Not found", "hypha "+id+" does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, hypha, http.StatusOK)
}

// UpdateHypha applies a partial update to an existing hypha
func (h *NetworkHandler) UpdateHypha(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/hyphae/")
	if id == "" {
		h.writeError(w, "Invalid hypha ID", "Hypha ID is required", http.StatusBadRequest)
		return
	}

	var update network.HyphaUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	hypha := h.engine.UpdateHypha(id, update)
	if hypha == nil {
		h.writeError(w, "Not found", "hypha "+id+" does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, hypha, http.StatusOK)
}

// DeleteHypha removes a hypha
func (h *NetworkHandler) DeleteHypha(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/hyphae/")
	if id == "" {
		h.writeError(w, "Invalid hypha ID", "Hypha ID is required", http.StatusBadRequest)
		return
	}

	if !h.engine.RemoveHypha(id) {
		h.writeError(w, "Not found", "hypha "+id+" does not exist", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EmitRequest is the body of a signal emission
type EmitRequest struct {
	SourceID  string                     `json:"source_id"`
	EmitterID string                     `json:"emitter_id,omitempty"`
	Signal    propagation.EmissionConfig `json:"signal"`
}

// EmitSignal emits a signal from a node and propagates it
func (h *NetworkHandler) EmitSignal(w http.ResponseWriter, r *http.Request) {
	var req EmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if req.SourceID == "" {
		h.writeError(w, "Invalid emission", "source_id is required", http.StatusBadRequest)
		return
	}

	signal := h.engine.EmitSignal(req.SourceID, req.EmitterID, req.Signal)
	if signal == nil {
		h.writeError(w, "Not found", "node "+req.SourceID+" does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, signal, http.StatusCreated)
}

// ListSignals returns all currently active signals
func (h *NetworkHandler) ListSignals(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.ActiveSignals(), http.StatusOK)
}

// GetSignal returns a single active signal
func (h *NetworkHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/signals/")
	if id == "" {
		h.writeError(w, "Invalid signal ID", "Signal ID is required", http.StatusBadRequest)
		return
	}

	signal := h.engine.GetSignal(id)
	if signal == nil {
		h.writeError(w, "Not found", "signal "+id+" is not active", http.StatusNotFound)
		return
	}

	h.writeJSON(w, signal, http.StatusOK)
}

// DeleteSignal removes a signal from the network entirely
func (h *NetworkHandler) DeleteSignal(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/signals/")
	if id == "" {
		h.writeError(w, "Invalid signal ID", "Signal ID is required", http.StatusBadRequest)
		return
	}

	if !h.engine.RemoveSignal(id) {
		h.writeError(w, "Not found", "signal "+id+" is not active", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListResonances returns all tracked resonance points
func (h *NetworkHandler) ListResonances(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.Resonances(), http.StatusOK)
}

// DetectResonance runs a detection pass and returns any new resonances
func (h *NetworkHandler) DetectResonance(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.DetectResonance(), http.StatusOK)
}

// ExportJSON exports the network snapshot as JSON
func (h *NetworkHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=mycelia.json")
	if err := codec.NewJSONCodec().Export(h.engine.Export(), w); err != nil {
		log.Printf("Failed to export JSON: %v", err)
	}
}

// ExportYAML exports the network snapshot as YAML
func (h *NetworkHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=mycelia.yaml")
	if err := codec.NewYAMLCodec().Export(h.engine.Export(), w); err != nil {
		log.Printf("Failed to export YAML: %v", err)
	}
}

// ImportSnapshot replaces the network with a posted snapshot. The body
// is parsed as YAML unless the Content-Type says JSON.
func (h *NetworkHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var c codec.Codec = codec.NewYAMLCodec()
	if strings.Contains(r.Header.Get("Content-Type"), "json") {
		c = codec.NewJSONCodec()
	}

	snap, err := c.Parse(r.Body)
	if err != nil {
		h.writeError(w, "Invalid snapshot", err.Error(), http.StatusBadRequest)
		return
	}

	h.engine.Import(snap)
	h.writeJSON(w, importResponse{
		Nodes:  len(snap.Nodes),
		Hyphae: len(snap.Hyphae),
	}, http.StatusOK)
}

type importResponse struct {
	Nodes  int `json:"nodes"`
	Hyphae int `json:"hyphae"`
}

func (h *NetworkHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *NetworkHandler) writeError(w http.ResponseWriter, message, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: message, Details: details}, statusCode)
}

func extractPathParam(path, prefix string) string {
	if strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, prefix)
	}
	return ""
}
