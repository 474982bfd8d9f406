// Package forecast predicts the health an agent will have left after a round
// trip to an item and back to the drop point.
//
// AverageSpeed and DrainRate must match the navigator speed and the health
// drain actually applied to the agent, otherwise predictions are meaningless.
// Build the Model from the same tuning values that configure those.
package forecast

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var inf = math.Inf(1)

type Model struct {
	DropPoint    orb.Point
	AverageSpeed float64 // units per second
	DrainRate    float64 // health per second
}

// TripDistance is agent -> target -> drop point.
func (m Model) TripDistance(target, agentPos orb.Point) float64 {
	return planar.Distance(agentPos, target) + planar.Distance(target, m.DropPoint)
}

// TripSeconds converts the round trip to travel time. A non-positive speed
// means the trip never completes.
func (m Model) TripSeconds(target, agentPos orb.Point) float64 {
	if m.AverageSpeed <= 0 {
		return inf
	}
	return m.TripDistance(target, agentPos) / m.AverageSpeed
}

// HealthCost is the health spent on the round trip.
func (m Model) HealthCost(target, agentPos orb.Point) float64 {
	secs := m.TripSeconds(target, agentPos)
	if secs == inf {
		return inf
	}
	return secs * m.DrainRate
}

// HealthAfterTrip is the predicted health on arrival back at the drop point.
// It may be negative.
func (m Model) HealthAfterTrip(target, agentPos orb.Point, currentHealth float64) float64 {
	return currentHealth - m.HealthCost(target, agentPos)
}
