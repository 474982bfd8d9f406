package vitals

import (
	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/notify"
)

// Health drains continuously while the agent is alive and is restored on
// deposits. Current always stays in [0, Max].
type Health struct {
	current   float64
	max       float64
	drainRate float64 // per second

	out notify.Emitter
}

func NewHealth(max, drainRate float64, out notify.Emitter) *Health {
	if out == nil {
		out = notify.Discard
	}
	return &Health{current: max, max: max, drainRate: drainRate, out: out}
}

func (h *Health) Current() float64   { return h.current }
func (h *Health) Max() float64       { return h.max }
func (h *Health) DrainRate() float64 { return h.drainRate }
func (h *Health) IsAlive() bool      { return h.current > 0 }

// Percent is 100 * current / max.
func (h *Health) Percent() float64 {
	if h.max <= 0 {
		return 0
	}
	return 100 * h.current / h.max
}

// Tick applies dt seconds of drain. The dead do not drain.
func (h *Health) Tick(dt float64) {
	if !h.IsAlive() || dt <= 0 || h.drainRate <= 0 {
		return
	}
	h.Drain(h.drainRate * dt)
}

// Drain removes amount, emitting DEATH once when health reaches zero.
func (h *Health) Drain(amount float64) {
	if amount <= 0 || !h.IsAlive() {
		return
	}
	h.current -= amount
	if h.current < 0 {
		h.current = 0
	}
	h.out.Emit(protocol.Notification{Type: protocol.NoteHealthChanged, Value: h.current})
	if h.current <= 0 {
		h.out.Emit(protocol.Notification{Type: protocol.NoteDeath})
	}
}

// Restore adds amount, never exceeding max. It reports the amount actually
// applied.
func (h *Health) Restore(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	before := h.current
	h.current += amount
	if h.current > h.max {
		h.current = h.max
	}
	h.out.Emit(protocol.Notification{Type: protocol.NoteHealthChanged, Value: h.current})
	return h.current - before
}

// Revive resets a dead agent to full health.
func (h *Health) Revive() {
	h.current = h.max
	h.out.Emit(protocol.Notification{Type: protocol.NoteHealthChanged, Value: h.current})
}
