package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/persistence/indexdb"
)

type fakeStatus struct {
	resp observerproto.BootstrapResponse
	err  error
}

func (f fakeStatus) Bootstrap(context.Context) (observerproto.BootstrapResponse, error) {
	return f.resp, f.err
}

type fakeStats struct{ s indexdb.Stats }

func (f fakeStats) Stats() indexdb.Stats { return f.s }

func TestMetricsHandler(t *testing.T) {
	src := fakeStatus{resp: observerproto.BootstrapResponse{
		RunID: "r1",
		Tick:  42,
		Agent: observerproto.AgentState{Health: 55, Score: 30, Alive: true, Strategy: "Balanced", State: "Searching"},
		Items: []observerproto.ItemState{{ID: "a", Status: "DEPOSITED"}, {ID: "b", Status: "AVAILABLE"}},
	}}
	h := metricsHandler(src, fakeStats{indexdb.Stats{QueueDepth: 3, DropTickTotal: 7}}, false)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`caddie_run_tick{run="r1"} 42`,
		`caddie_agent_score{run="r1"} 30`,
		`caddie_agent_alive{run="r1",strategy="Balanced",state="Searching"} 1`,
		`caddie_items{run="r1",status="DEPOSITED"} 1`,
		`caddie_items{run="r1",status="HELD"} 0`,
		`caddie_index_dropped_total{run="r1",kind="tick"} 7`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestMetricsHandler_NoIndexAndRemote(t *testing.T) {
	h := metricsHandler(fakeStatus{resp: observerproto.BootstrapResponse{RunID: "r1"}}, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("remote status=%d", rec.Code)
	}

	req.RemoteAddr = "[::1]:5555"
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "caddie_index") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestOpenRuntimeIndex(t *testing.T) {
	idx, err := openRuntimeIndex(t.TempDir(), true)
	if err != nil || idx != nil {
		t.Fatalf("disabled: idx=%v err=%v", idx, err)
	}

	t.Setenv("CADDIE_INDEX_BACKEND", "bogus")
	if _, err := openRuntimeIndex(t.TempDir(), false); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	t.Setenv("CADDIE_INDEX_BACKEND", "sqlite")
	idx, err = openRuntimeIndex(t.TempDir(), false)
	if err != nil || idx == nil {
		t.Fatalf("sqlite: idx=%v err=%v", idx, err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
