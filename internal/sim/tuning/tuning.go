package tuning

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz" json:"tick_rate_hz"`

	Health   Health   `yaml:"health" json:"health"`
	Movement Movement `yaml:"movement" json:"movement"`
	Strategy Strategy `yaml:"strategy" json:"strategy"`
	Actions  Actions  `yaml:"actions" json:"actions"`
	Field    Field    `yaml:"field" json:"field"`

	// RespawnAfterSeconds > 0 revives a dead agent after the delay.
	// Zero keeps the agent frozen forever.
	RespawnAfterSeconds float64 `yaml:"respawn_after_seconds" json:"respawn_after_seconds"`
}

type Health struct {
	Max           float64 `yaml:"max" json:"max"`
	DrainRate     float64 `yaml:"drain_rate" json:"drain_rate"` // per second
	RestoreAmount float64 `yaml:"restore_amount" json:"restore_amount"`
}

type Movement struct {
	Speed            float64 `yaml:"speed" json:"speed"` // units per second
	StoppingDistance float64 `yaml:"stopping_distance" json:"stopping_distance"`
	ArrivalDistance  float64 `yaml:"arrival_distance" json:"arrival_distance"`
}

type Strategy struct {
	Initial string `yaml:"initial" json:"initial"`

	GreedyThreshold   float64 `yaml:"greedy_threshold" json:"greedy_threshold"`
	SafetyThreshold   float64 `yaml:"safety_threshold" json:"safety_threshold"`
	SafetyMarginPct   float64 `yaml:"safety_margin_pct" json:"safety_margin_pct"`
	CriticalHealthPct float64 `yaml:"critical_health_pct" json:"critical_health_pct"`
	SafeRadius        float64 `yaml:"safe_radius" json:"safe_radius"`
	SearchIntervalSec float64 `yaml:"search_interval_seconds" json:"search_interval_seconds"`
}

type Actions struct {
	PickupSeconds float64 `yaml:"pickup_seconds" json:"pickup_seconds"`
	ResumeSeconds float64 `yaml:"resume_seconds" json:"resume_seconds"`
	DropSeconds   float64 `yaml:"drop_seconds" json:"drop_seconds"`
}

type Field struct {
	// DropPoint is [x, z] on the ground plane. Empty means no drop point.
	DropPoint []float64 `yaml:"drop_point" json:"drop_point"`
	Spawn     []float64 `yaml:"spawn" json:"spawn"`

	// Bounds is [minX, minZ, maxX, maxZ].
	Bounds    []float64   `yaml:"bounds" json:"bounds"`
	Obstacles [][]float64 `yaml:"obstacles" json:"obstacles"`

	// Items is used when no GeoJSON field file is given.
	Items []ItemSpec `yaml:"items" json:"items"`
}

type ItemSpec struct {
	ID    string    `yaml:"id" json:"id"`
	Pos   []float64 `yaml:"pos" json:"pos"`
	Level int       `yaml:"level" json:"level"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz: 10,
		Health: Health{
			Max:           100,
			DrainRate:     1,
			RestoreAmount: 20,
		},
		Movement: Movement{
			Speed:            3.5,
			StoppingDistance: 1.5,
			ArrivalDistance:  3,
		},
		Strategy: Strategy{
			Initial:           "Closest",
			GreedyThreshold:   70,
			SafetyThreshold:   30,
			SafetyMarginPct:   20,
			CriticalHealthPct: 15,
			SafeRadius:        10,
			SearchIntervalSec: 0.5,
		},
		Actions: Actions{
			PickupSeconds: 0.5,
			ResumeSeconds: 0.5,
			DropSeconds:   0.5,
		},
		Field: Field{
			DropPoint: []float64{0, 0},
			Spawn:     []float64{0, 0},
			Bounds:    []float64{-50, -50, 50, 50},
		},
	}
}

// Load reads tuning.yaml over the defaults. An empty path yields the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, t.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	if t == nil {
		return
	}
	if t.Movement.ArrivalDistance <= 0 {
		t.Movement.ArrivalDistance = t.Movement.StoppingDistance
	}
	if strings.TrimSpace(t.Strategy.Initial) == "" {
		t.Strategy.Initial = "Closest"
	}
	if len(t.Field.Spawn) == 0 && len(t.Field.DropPoint) == 2 {
		t.Field.Spawn = append([]float64(nil), t.Field.DropPoint...)
	}
}

func (t Tuning) Validate() error {
	if err := validateSchema(t); err != nil {
		return err
	}
	if t.Strategy.GreedyThreshold <= t.Strategy.SafetyThreshold {
		return fmt.Errorf("strategy.greedy_threshold (%g) must be > strategy.safety_threshold (%g)",
			t.Strategy.GreedyThreshold, t.Strategy.SafetyThreshold)
	}
	if t.Health.RestoreAmount > t.Health.Max {
		return fmt.Errorf("health.restore_amount must be <= health.max")
	}
	if b := t.Field.Bounds; len(b) == 4 && (b[0] >= b[2] || b[1] >= b[3]) {
		return errors.New("field.bounds must be [minX, minZ, maxX, maxZ] with min < max")
	}
	for i, o := range t.Field.Obstacles {
		if o[0] >= o[2] || o[1] >= o[3] {
			return fmt.Errorf("field.obstacles[%d] must be [minX, minZ, maxX, maxZ] with min < max", i)
		}
	}
	seen := map[string]bool{}
	for i, it := range t.Field.Items {
		if seen[it.ID] {
			return fmt.Errorf("field.items[%d]: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// TickSeconds is the fixed step used by the simulation loop.
func (t Tuning) TickSeconds() float64 {
	if t.TickRateHz <= 0 {
		return 0
	}
	return 1 / float64(t.TickRateHz)
}

// JSON returns the canonical JSON of the effective values.
func (t Tuning) JSON() []byte {
	b, _ := json.Marshal(t)
	return b
}
