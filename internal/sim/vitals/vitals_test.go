package vitals

import (
	"testing"

	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/notify"
)

func TestHealth_TickDrainsAndDiesOnce(t *testing.T) {
	out := notify.NewOutbox()
	h := NewHealth(10, 2, out)
	h.Tick(2)
	if h.Current() != 6 {
		t.Fatalf("expected 6, got %v", h.Current())
	}
	h.Tick(10)
	if h.Current() != 0 || h.IsAlive() {
		t.Fatalf("expected dead at 0, got %v", h.Current())
	}
	h.Tick(1)
	batch := out.Drain()
	deaths := 0
	for _, n := range batch {
		if n.Type == protocol.NoteDeath {
			deaths++
		}
	}
	if deaths != 1 {
		t.Fatalf("expected exactly one DEATH, got %d in %+v", deaths, batch)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 2 HEALTH_CHANGED + DEATH, got %+v", batch)
	}
}

func TestHealth_RestoreClampsToMax(t *testing.T) {
	h := NewHealth(100, 1, nil)
	h.Drain(10)
	if got := h.Restore(25); got != 10 {
		t.Fatalf("expected 10 applied, got %v", got)
	}
	if h.Current() != 100 {
		t.Fatalf("expected 100, got %v", h.Current())
	}
	h.Drain(30)
	if got := h.Restore(20); got != 20 || h.Current() != 90 {
		t.Fatalf("expected +20 to 90, got +%v to %v", got, h.Current())
	}
}

func TestHealth_PercentAndRevive(t *testing.T) {
	h := NewHealth(200, 1, nil)
	h.Drain(58)
	if h.Percent() != 71 {
		t.Fatalf("expected 71%%, got %v", h.Percent())
	}
	h.Drain(500)
	h.Revive()
	if !h.IsAlive() || h.Current() != 200 {
		t.Fatalf("revive should restore full health")
	}
}

func TestScore_AddOnlyGrows(t *testing.T) {
	out := notify.NewOutbox()
	s := NewScore(out)
	s.Add(50)
	s.Add(0)
	s.Add(-10)
	s.Add(10)
	if s.Value() != 60 {
		t.Fatalf("expected 60, got %d", s.Value())
	}
	batch := out.Drain()
	if len(batch) != 2 || batch[1].Score != 60 {
		t.Fatalf("expected two SCORE_CHANGED, got %+v", batch)
	}
	s.Reset()
	if s.Value() != 0 {
		t.Fatalf("reset failed")
	}
}
