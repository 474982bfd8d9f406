package tuning

import (
	"strings"
	"testing"
)

func TestLoad_ConfigsTuningYAML(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning.yaml: %v", err)
	}
	if tune.Movement.Speed != 3.5 || tune.Health.DrainRate != 1 {
		t.Fatalf("unexpected movement/health: %+v %+v", tune.Movement, tune.Health)
	}
	if len(tune.Field.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(tune.Field.Items))
	}
	if len(tune.Field.ObstacleBounds()) != 1 {
		t.Fatalf("expected 1 obstacle")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	tune, err := Load("")
	if err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if tune.Strategy.GreedyThreshold != 70 || tune.Strategy.SafetyThreshold != 30 {
		t.Fatalf("unexpected thresholds: %+v", tune.Strategy)
	}
	if got := tune.TickSeconds(); got != 0.1 {
		t.Fatalf("expected 0.1s tick, got %v", got)
	}
}

func TestParse_OverridesKeepDefaults(t *testing.T) {
	tune, err := Parse([]byte("health:\n  max: 200\n  drain_rate: 2\n  restore_amount: 50\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tune.Health.Max != 200 || tune.Movement.Speed != 3.5 {
		t.Fatalf("override/default mix wrong: %+v %+v", tune.Health, tune.Movement)
	}
}

func TestParse_RejectsThresholdOrder(t *testing.T) {
	_, err := Parse([]byte("strategy:\n  greedy_threshold: 20\n  safety_threshold: 30\n"))
	if err == nil || !strings.Contains(err.Error(), "greedy_threshold") {
		t.Fatalf("expected threshold order error, got %v", err)
	}
}

func TestParse_SchemaRejectsBadShapes(t *testing.T) {
	cases := []string{
		"tick_rate_hz: 0\n",
		"movement:\n  speed: -1\n  stopping_distance: 1\n  arrival_distance: 1\n",
		"field:\n  drop_point: [1, 2, 3]\n",
		"field:\n  items:\n    - {id: a, pos: [0, 0], level: 0}\n",
		"strategy:\n  safety_margin_pct: 120\n",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Fatalf("expected schema error for %q", c)
		}
	}
}

func TestParse_DuplicateItemIDs(t *testing.T) {
	raw := "field:\n  items:\n    - {id: a, pos: [0, 0], level: 1}\n    - {id: a, pos: [1, 1], level: 2}\n"
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestField_DropPointOptional(t *testing.T) {
	tune, err := Parse([]byte("field:\n  drop_point: []\n  spawn: [3, 4]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := tune.Field.DropPointXZ(); ok {
		t.Fatalf("expected no drop point")
	}
	if sp := tune.Field.SpawnXZ(); sp[0] != 3 || sp[1] != 4 {
		t.Fatalf("unexpected spawn %v", sp)
	}
}

func TestParse_AcceptsOwnJSON(t *testing.T) {
	in := Defaults()
	in.Health.DrainRate = 2.5
	in.Field.DropPoint = nil
	in.Field.Items = []ItemSpec{{ID: "a", Pos: []float64{1, 2}, Level: 3}}

	out, err := Parse(in.JSON())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.Health.DrainRate != 2.5 || len(out.Field.Items) != 1 || out.Field.Items[0].Level != 3 {
		t.Fatalf("round trip: %+v", out)
	}
	if _, ok := out.Field.DropPointXZ(); ok {
		t.Fatalf("drop point should stay unset")
	}
}
