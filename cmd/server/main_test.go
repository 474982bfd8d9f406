package main

import (
	"testing"

	"github.com/paulmach/orb"

	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/world"
)

type countingLogger struct{ n int }

func (c *countingLogger) WriteTick(world.TickLogEntry) error {
	c.n++
	return nil
}

func TestMultiTickLoggerAndLimit(t *testing.T) {
	a, b := &countingLogger{}, &countingLogger{}
	stopped := 0
	m := multiTickLogger{a, b, tickLimit{limit: 3, stop: func() { stopped++ }}}

	for tick := uint64(0); tick < 2; tick++ {
		_ = m.WriteTick(world.TickLogEntry{Tick: tick})
	}
	if stopped != 0 {
		t.Fatalf("stopped early")
	}
	_ = m.WriteTick(world.TickLogEntry{Tick: 2})
	if stopped != 1 || a.n != 3 || b.n != 3 {
		t.Fatalf("stopped=%d a=%d b=%d", stopped, a.n, b.n)
	}
}

func TestItemSpecs(t *testing.T) {
	specs := itemSpecs([]*collect.Collectable{collect.New("a", orb.Point{1.5, -2}, 3)})
	if len(specs) != 1 || specs[0].ID != "a" || specs[0].Level != 3 || specs[0].Pos[1] != -2 {
		t.Fatalf("specs: %+v", specs)
	}
}
