// Package strategy holds the target selection policies. Every policy is an
// immutable value: configuration is fixed at construction and Select never
// mutates its input, so the same candidates always give the same answer.
package strategy

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/forecast"
)

// Strategy picks the next item to pursue, or nil when nothing is worth it.
type Strategy interface {
	Kind() Kind
	Select(candidates []*collect.Collectable, agentPos orb.Point, currentHealth float64) *collect.Collectable
}

type Config struct {
	Forecast  forecast.Model
	MaxHealth float64

	// SafetyMarginPct is the minimum predicted health, as a percentage of
	// MaxHealth, a Balanced trip must leave.
	SafetyMarginPct float64
	// SafeRadius bounds SafetyFirst's preferred zone around the drop point.
	SafeRadius float64
}

// Set holds one instance of each policy.
type Set struct {
	closest  Closest
	greedy   Greedy
	balanced Balanced
	safety   SafetyFirst
}

func NewSet(cfg Config) Set {
	return Set{
		closest: Closest{},
		greedy:  Greedy{},
		balanced: Balanced{
			Forecast:        cfg.Forecast,
			MaxHealth:       cfg.MaxHealth,
			SafetyMarginPct: cfg.SafetyMarginPct,
		},
		safety: SafetyFirst{
			DropPoint:  cfg.Forecast.DropPoint,
			SafeRadius: cfg.SafeRadius,
		},
	}
}

func (s Set) Get(k Kind) Strategy {
	switch k {
	case KindClosest:
		return s.closest
	case KindGreedy:
		return s.greedy
	case KindBalanced:
		return s.balanced
	case KindSafetyFirst:
		return s.safety
	default:
		return s.closest
	}
}

func dist(a, b orb.Point) float64 { return planar.Distance(a, b) }

// nearest returns the first candidate with minimum distance to pos.
func nearest(candidates []*collect.Collectable, pos orb.Point) *collect.Collectable {
	var best *collect.Collectable
	bestDist := 0.0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		d := dist(pos, c.Pos)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
