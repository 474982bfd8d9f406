// Package selector maps the agent's health percentage to the active strategy.
package selector

import (
	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/notify"
	"caddie.ai/internal/sim/strategy"
)

// Thresholds are health percentages. Greedy must be above Safety.
type Thresholds struct {
	Greedy float64
	Safety float64
}

// KindFor applies the threshold rule: above Greedy is Greedy, below Safety
// is SafetyFirst, anything in between (inclusive) is Balanced.
func KindFor(pct float64, th Thresholds) strategy.Kind {
	switch {
	case pct > th.Greedy:
		return strategy.KindGreedy
	case pct < th.Safety:
		return strategy.KindSafetyFirst
	default:
		return strategy.KindBalanced
	}
}

type Selector struct {
	th     Thresholds
	active strategy.Kind
	out    notify.Emitter
}

func New(th Thresholds, initial strategy.Kind, out notify.Emitter) *Selector {
	if out == nil {
		out = notify.Discard
	}
	return &Selector{th: th, active: initial, out: out}
}

func (s *Selector) Active() strategy.Kind { return s.active }

// Evaluate recomputes the strategy for the given health and reports whether
// it changed. STRATEGY_CHANGED is emitted only on a change.
func (s *Selector) Evaluate(current, max float64) (strategy.Kind, bool) {
	pct := 0.0
	if max > 0 {
		pct = 100 * current / max
	}
	next := KindFor(pct, s.th)
	if next == s.active {
		return next, false
	}
	s.active = next
	s.out.Emit(protocol.Notification{Type: protocol.NoteStrategyChanged, Strategy: next.String()})
	return next, true
}
