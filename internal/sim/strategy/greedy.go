package strategy

import (
	"github.com/paulmach/orb"

	"caddie.ai/internal/sim/collect"
)

// Greedy picks the most valuable item, nearest first among equals.
type Greedy struct{}

func (Greedy) Kind() Kind { return KindGreedy }

func (Greedy) Select(candidates []*collect.Collectable, agentPos orb.Point, _ float64) *collect.Collectable {
	var best *collect.Collectable
	bestValue, bestDist := 0, 0.0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		v, d := c.PointValue(), dist(agentPos, c.Pos)
		if best == nil || v > bestValue || (v == bestValue && d < bestDist) {
			best, bestValue, bestDist = c, v, d
		}
	}
	return best
}
