package vitals

import (
	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/notify"
)

// Score only grows, except through an explicit Reset.
type Score struct {
	value int
	out   notify.Emitter
}

func NewScore(out notify.Emitter) *Score {
	if out == nil {
		out = notify.Discard
	}
	return &Score{out: out}
}

func (s *Score) Value() int { return s.value }

func (s *Score) Add(points int) {
	if points <= 0 {
		return
	}
	s.value += points
	s.out.Emit(protocol.Notification{Type: protocol.NoteScoreChanged, Score: s.value})
}

func (s *Score) Reset() {
	s.value = 0
	s.out.Emit(protocol.Notification{Type: protocol.NoteScoreChanged, Score: 0})
}
