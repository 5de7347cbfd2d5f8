package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/amstokely/nfsim/internal/nfcore"
	"github.com/amstokely/nfsim/internal/nfcore/notifiers"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /model
// Body: nfcore.ModelConfig JSON. Builds a fresh system and replaces
// whatever was previously loaded.
func (s *Server) handleLoadModel(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cfg nfcore.ModelConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid model json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.loadModel(&cfg); err != nil {
		s.logger.Errorf("failed to load model: %v", err)
		http.Error(w, "cannot build model: "+err.Error(), http.StatusBadRequest)
		return
	}

	sys := s.currentSystem()
	s.logger.Infof("model loaded: run_id=%s molecule_types=%d rules=%d", sys.RunID, len(sys.MoleculeTypes), len(sys.Rules))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("model loaded"))
}

// POST /step
// Advances the loaded system by a single next-reaction event.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sys := s.currentSystem()
	if sys == nil {
		http.Error(w, "no model loaded", http.StatusBadRequest)
		return
	}

	if err := sys.SingleStep(); err != nil {
		http.Error(w, "step failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.Observe(sys)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"time": sys.Time, "event_counter": sys.EventCounter})
}

// POST /run?duration=&samples=
// Runs the loaded system forward and returns the resulting observable
// samples.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sys := s.currentSystem()
	if sys == nil {
		http.Error(w, "no model loaded", http.StatusBadRequest)
		return
	}

	duration, err := strconv.ParseFloat(r.URL.Query().Get("duration"), 64)
	if err != nil || duration <= 0 {
		http.Error(w, "query param duration must be a positive number", http.StatusBadRequest)
		return
	}
	samples := 100
	if v := r.URL.Query().Get("samples"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			samples = n
		}
	}

	result, err := sys.Sim(duration, samples)
	if err != nil {
		http.Error(w, "run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.Observe(sys)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// GET /observables
// Returns the current value of every registered observable without
// advancing time.
func (s *Server) handleObservables(w http.ResponseWriter, r *http.Request) {
	sys := s.currentSystem()
	if sys == nil {
		http.Error(w, "no model loaded", http.StatusBadRequest)
		return
	}

	vals := make(map[string]int, len(sys.Observables))
	for _, o := range sys.Observables {
		vals[o.Name] = o.Value(sys)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"time": sys.Time, "values": vals})
}

// GET /stats
// Returns per-rule firing counts accumulated since the model was loaded.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sys := s.currentSystem()
	if sys == nil {
		http.Error(w, "no model loaded", http.StatusBadRequest)
		return
	}

	counts := make(map[string]int, len(sys.Rules))
	for _, rule := range sys.Rules {
		counts[rule.Name] = rule.FireCount
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"time":          sys.Time,
		"event_counter": sys.EventCounter,
		"null_events":   sys.NullEvents,
		"rule_fires":    counts,
	})
}

// GET /snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sys := s.currentSystem()
	if sys == nil {
		http.Error(w, "no model loaded", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sys.Snapshot())
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	ids := s.notifierMgr.ListNotifiers()
	out := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.notifierMgr.GetNotifier(id); ok {
			out = append(out, map[string]string{"id": id, "type": n.Type()})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"notifiers": out})
}

// POST /notifiers
// Body: { "type": "webhook"|"websocket", "id": "...", "config": { "url": "..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier nfcore.Notifier
	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}
		notifier = wh
	case "websocket":
		notifier = notifiers.NewWebSocketNotifier(req.ID)
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("notifier registered: id=%s type=%s", req.ID, req.Type)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if id == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	if err := s.notifierMgr.UnregisterNotifier(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws/{id}
// Upgrades the connection and attaches it to a previously registered
// websocket notifier.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/ws/")
	if id == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	n, ok := s.notifierMgr.GetNotifier(id)
	if !ok {
		http.Error(w, "notifier not found", http.StatusNotFound)
		return
	}
	wsNotifier, ok := n.(*notifiers.WebSocketNotifier)
	if !ok {
		http.Error(w, "notifier is not a websocket notifier", http.StatusBadRequest)
		return
	}

	upgrader := wsNotifier.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	wsNotifier.RegisterClient(conn)
}

func (s *Server) handleNotifierRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}
