package strategy

import (
	"github.com/paulmach/orb"

	"caddie.ai/internal/sim/collect"
)

// Closest picks the nearest item. Ties go to the first one encountered.
type Closest struct{}

func (Closest) Kind() Kind { return KindClosest }

func (Closest) Select(candidates []*collect.Collectable, agentPos orb.Point, _ float64) *collect.Collectable {
	return nearest(candidates, agentPos)
}
