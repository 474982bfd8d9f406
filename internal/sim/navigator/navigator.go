// Package navigator is a kinematic stand-in for a navmesh agent: constant
// speed along a straight line, a rectangular world and rectangular
// obstacles.
package navigator

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"caddie.ai/internal/sim/brain"
)

type Config struct {
	Speed float64

	// World is ignored when it has zero area.
	World     orb.Bound
	Obstacles []orb.Bound

	// PendingTicks is how many Step calls a new destination stays pending.
	PendingTicks int
}

type Navigator struct {
	cfg Config

	pos     orb.Point
	dest    orb.Point
	hasDest bool
	stopped bool
	pending int
	walked  float64
}

func New(cfg Config, start orb.Point) *Navigator {
	if cfg.PendingTicks < 0 {
		cfg.PendingTicks = 0
	}
	return &Navigator{cfg: cfg, pos: start}
}

func (n *Navigator) Position() orb.Point  { return n.pos }
func (n *Navigator) HasPendingPath() bool { return n.pending > 0 }
func (n *Navigator) Stop()                { n.stopped = true }
func (n *Navigator) Resume()              { n.stopped = false }

// Walked is the total distance covered since New.
func (n *Navigator) Walked() float64 { return n.walked }

// Moving reports whether the next Step would change the position.
func (n *Navigator) Moving() bool {
	return n.hasDest && !n.stopped && n.pending == 0 && n.pos != n.dest
}

func (n *Navigator) Destination() (orb.Point, bool) { return n.dest, n.hasDest }

func (n *Navigator) SetDestination(p orb.Point) {
	n.dest = p
	n.hasDest = true
	n.pending = n.cfg.PendingTicks
}

func (n *Navigator) RemainingDistance() float64 {
	if !n.hasDest {
		return 0
	}
	return planar.Distance(n.pos, n.dest)
}

// CalculatePath checks that p is inside the world, outside every obstacle,
// and reachable along a straight line from the current position.
func (n *Navigator) CalculatePath(p orb.Point) brain.PathResult {
	if !n.inWorld(p) {
		return brain.PathInvalid
	}
	for _, ob := range n.cfg.Obstacles {
		if ob.Contains(p) || segmentHitsBound(n.pos, p, ob) {
			return brain.PathInvalid
		}
	}
	return brain.PathValid
}

// Warp teleports to p and forgets the current destination.
func (n *Navigator) Warp(p orb.Point) {
	n.pos = p
	n.hasDest = false
	n.pending = 0
}

// Step advances dt seconds.
func (n *Navigator) Step(dt float64) {
	if n.pending > 0 {
		n.pending--
		return
	}
	if n.stopped || !n.hasDest || dt <= 0 || n.cfg.Speed <= 0 {
		return
	}
	d := planar.Distance(n.pos, n.dest)
	step := n.cfg.Speed * dt
	if d <= step {
		n.walked += d
		n.pos = n.dest
		return
	}
	f := step / d
	n.walked += step
	n.pos = orb.Point{
		n.pos[0] + (n.dest[0]-n.pos[0])*f,
		n.pos[1] + (n.dest[1]-n.pos[1])*f,
	}
}

func (n *Navigator) inWorld(p orb.Point) bool {
	w := n.cfg.World
	if w.Max[0] <= w.Min[0] || w.Max[1] <= w.Min[1] {
		return true
	}
	return w.Contains(p)
}

// segmentHitsBound clips the segment a-b against box (Liang-Barsky).
func segmentHitsBound(a, b orb.Point, box orb.Bound) bool {
	dx, dy := b[0]-a[0], b[1]-a[1]
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	return clip(-dx, a[0]-box.Min[0]) &&
		clip(dx, box.Max[0]-a[0]) &&
		clip(-dy, a[1]-box.Min[1]) &&
		clip(dy, box.Max[1]-a[1])
}
