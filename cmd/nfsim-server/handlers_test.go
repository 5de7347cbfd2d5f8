package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amstokely/nfsim/internal/nfcore"
)

func switchModelJSON() []byte {
	cfg := nfcore.ModelConfig{
		Name: "switch",
		MoleculeTypes: []nfcore.MoleculeTypeConfig{
			{Name: "Switch", Components: []nfcore.ComponentConfig{
				{Name: "state", States: []string{"off", "on"}, DefaultState: "off"},
			}},
		},
		Rules: []nfcore.RuleConfig{
			{
				Name:      "turnOn",
				Reactants: []nfcore.PatternConfig{{Molecules: []nfcore.TemplateMoleculeConfig{{MoleculeType: "Switch", Components: []nfcore.ComponentPatternConfig{{Name: "state", State: "off"}}}}}},
				Actions:   []nfcore.TransformationConfig{{Kind: "changeState", Reactant: 0, Component: "state", NewState: "on"}},
				RateExpr:  "kOn",
			},
		},
		Parameters: map[string]float64{"kOn": 0.5},
		Observables: []nfcore.ObservableConfig{
			{Name: "On", Kind: "molecules", Pattern: nfcore.PatternConfig{Molecules: []nfcore.TemplateMoleculeConfig{
				{MoleculeType: "Switch", Components: []nfcore.ComponentPatternConfig{{Name: "state", State: "on"}}},
			}}},
		},
		Seed:       []nfcore.SeedConfig{{MoleculeType: "Switch", Count: 10}},
		RandomSeed: 1,
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return data
}

func TestHandleLoadModelAndObservables(t *testing.T) {
	srv := NewServer(NewLogger("error"), 1, 0)

	req := httptest.NewRequest(http.MethodPost, "/model", bytes.NewReader(switchModelJSON()))
	w := httptest.NewRecorder()
	srv.handleLoadModel(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if srv.currentSystem() == nil {
		t.Fatal("expected a system to be loaded")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/observables", nil)
	w2 := httptest.NewRecorder()
	srv.handleObservables(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w2.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	values, ok := resp["values"].(map[string]any)
	if !ok {
		t.Fatalf("expected values map, got %+v", resp)
	}
	if _, ok := values["On"]; !ok {
		t.Fatalf("expected an 'On' observable, got %+v", values)
	}
}

func TestHandleLoadModelRejectsInvalidJSON(t *testing.T) {
	srv := NewServer(NewLogger("error"), 1, 0)
	req := httptest.NewRequest(http.MethodPost, "/model", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	srv.handleLoadModel(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestHandleStepAndRunRequireLoadedModel(t *testing.T) {
	srv := NewServer(NewLogger("error"), 1, 0)

	w := httptest.NewRecorder()
	srv.handleStep(w, httptest.NewRequest(http.MethodPost, "/step", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 with no model loaded, got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	srv.handleRun(w2, httptest.NewRequest(http.MethodPost, "/run?duration=10", nil))
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 with no model loaded, got %d", w2.Code)
	}
}

func TestHandleRunAdvancesTimeAndReportsStats(t *testing.T) {
	srv := NewServer(NewLogger("error"), 1, 0)
	loadReq := httptest.NewRequest(http.MethodPost, "/model", bytes.NewReader(switchModelJSON()))
	loadW := httptest.NewRecorder()
	srv.handleLoadModel(loadW, loadReq)
	if loadW.Code != http.StatusOK {
		t.Fatalf("failed to load model: %s", loadW.Body.String())
	}

	runReq := httptest.NewRequest(http.MethodPost, "/run?duration=20&samples=5", nil)
	runW := httptest.NewRecorder()
	srv.handleRun(runW, runReq)
	if runW.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", runW.Code, runW.Body.String())
	}

	statsReq := httptest.NewRequest(http.MethodGet, "/stats", nil)
	statsW := httptest.NewRecorder()
	srv.handleStats(statsW, statsReq)

	var stats map[string]any
	if err := json.Unmarshal(statsW.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats["time"].(float64) <= 0 {
		t.Errorf("expected time to have advanced, got %v", stats["time"])
	}
}

func TestHandleRegisterAndUnregisterWebhookNotifier(t *testing.T) {
	srv := NewServer(NewLogger("error"), 1, 0)

	body, _ := json.Marshal(registerNotifierRequest{
		Type: "webhook", ID: "wh1", Config: map[string]any{"url": "http://example.invalid/hook"},
	})
	req := httptest.NewRequest(http.MethodPost, "/notifiers", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleRegisterNotifier(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	listW := httptest.NewRecorder()
	srv.handleListNotifiers(listW, httptest.NewRequest(http.MethodGet, "/notifiers", nil))
	var listResp map[string]any
	if err := json.Unmarshal(listW.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(listResp["notifiers"].([]any)) != 1 {
		t.Fatalf("expected 1 registered notifier, got %+v", listResp)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/notifiers/wh1", nil)
	delW := httptest.NewRecorder()
	srv.handleUnregisterNotifier(delW, delReq)
	if delW.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", delW.Code, delW.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(NewLogger("error"), 1, 0)
	w := httptest.NewRecorder()
	srv.handleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
