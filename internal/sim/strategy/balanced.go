package strategy

import (
	"github.com/paulmach/orb"

	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/forecast"
)

// Rejected is the score of an item whose trip would breach the safety margin.
const Rejected = -1.0

// Balanced weighs value against the forecast health cost of the round trip,
// and refuses trips that would leave less than the safety margin.
type Balanced struct {
	Forecast        forecast.Model
	MaxHealth       float64
	SafetyMarginPct float64
}

func (Balanced) Kind() Kind { return KindBalanced }

// Score is (value * health/max) / (cost + 1), or Rejected.
func (b Balanced) Score(c *collect.Collectable, agentPos orb.Point, currentHealth float64) float64 {
	cost := b.Forecast.HealthCost(c.Pos, agentPos)
	if currentHealth-cost < b.margin() {
		return Rejected
	}
	frac := 0.0
	if b.MaxHealth > 0 {
		frac = currentHealth / b.MaxHealth
	}
	return float64(c.PointValue()) * frac / (cost + 1)
}

func (b Balanced) Select(candidates []*collect.Collectable, agentPos orb.Point, currentHealth float64) *collect.Collectable {
	var best *collect.Collectable
	bestScore := Rejected
	for _, c := range candidates {
		if c == nil {
			continue
		}
		s := b.Score(c, agentPos, currentHealth)
		if s == Rejected {
			continue
		}
		if best == nil || s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

func (b Balanced) margin() float64 {
	return b.SafetyMarginPct / 100 * b.MaxHealth
}
