package strategy

import (
	"github.com/paulmach/orb"

	"caddie.ai/internal/sim/collect"
)

// SafetyFirst stays near the drop point: the nearest item within SafeRadius
// of it, or the nearest item overall when none is that close.
type SafetyFirst struct {
	DropPoint  orb.Point
	SafeRadius float64
}

func (SafetyFirst) Kind() Kind { return KindSafetyFirst }

func (s SafetyFirst) Select(candidates []*collect.Collectable, agentPos orb.Point, _ float64) *collect.Collectable {
	safe := make([]*collect.Collectable, 0, len(candidates))
	for _, c := range candidates {
		if c != nil && dist(c.Pos, s.DropPoint) < s.SafeRadius {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		return nearest(candidates, agentPos)
	}
	return nearest(safe, agentPos)
}
