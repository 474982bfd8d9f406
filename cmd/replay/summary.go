package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/world"
)

var errStop = errors.New("stop")

type summary struct {
	RunID string

	Ticks     uint64
	FirstTick uint64
	LastTick  uint64

	FinalScore  int
	FinalHealth float64
	Deposits    int
	Points      int
	Deaths      int
	Respawns    int
	Abandoned   int
	Evicted     int
	Switches    int

	FirstDepositTick uint64
	hasDeposit       bool

	StrategyTicks map[string]uint64
	StateTicks    map[string]uint64
}

func newSummary() *summary {
	return &summary{
		StrategyTicks: map[string]uint64{},
		StateTicks:    map[string]uint64{},
	}
}

// Add folds one tick entry into the summary. Entries must be contiguous.
func (s *summary) Add(e world.TickLogEntry) error {
	if s.Ticks == 0 {
		s.RunID = e.RunID
		s.FirstTick = e.Tick
	} else {
		if e.RunID != s.RunID {
			return fmt.Errorf("run id changed at tick %d: %s -> %s", e.Tick, s.RunID, e.RunID)
		}
		if e.Tick != s.LastTick+1 {
			return fmt.Errorf("tick gap: %d -> %d", s.LastTick, e.Tick)
		}
	}
	s.Ticks++
	s.LastTick = e.Tick
	s.FinalScore = e.Agent.Score
	s.FinalHealth = e.Agent.Health
	s.StrategyTicks[e.Agent.Strategy]++
	s.StateTicks[e.Agent.State]++

	for _, n := range e.Notifications {
		switch n.Type {
		case protocol.NoteDeposit:
			s.Deposits++
			s.Points += n.Points
			if !s.hasDeposit {
				s.hasDeposit = true
				s.FirstDepositTick = n.Tick
			}
		case protocol.NoteDeath:
			s.Deaths++
		case protocol.NoteRespawn:
			s.Respawns++
		case protocol.NoteTargetAbandoned:
			s.Abandoned++
		case protocol.NoteTargetEvicted:
			s.Evicted++
		case protocol.NoteStrategyChanged:
			s.Switches++
		}
	}
	return nil
}

func (s *summary) Print(out io.Writer) {
	fmt.Fprintf(out, "ticks %s (%d..%d)\n", humanize.Comma(int64(s.Ticks)), s.FirstTick, s.LastTick)
	fmt.Fprintf(out, "score %s from %s deposits (%s points)\n",
		humanize.Comma(int64(s.FinalScore)), humanize.Comma(int64(s.Deposits)), humanize.Comma(int64(s.Points)))
	if s.hasDeposit {
		fmt.Fprintf(out, "first deposit on the %s tick\n", humanize.Ordinal(int(s.FirstDepositTick-s.FirstTick)+1))
	}
	fmt.Fprintf(out, "health %s at end, deaths %d, respawns %d\n", humanize.Ftoa(s.FinalHealth), s.Deaths, s.Respawns)
	fmt.Fprintf(out, "targets abandoned %d, evicted %d\n", s.Abandoned, s.Evicted)
	fmt.Fprintf(out, "strategy switches %d\n", s.Switches)
	printShare(out, "strategy", s.StrategyTicks, s.Ticks)
	printShare(out, "state", s.StateTicks, s.Ticks)
}

func printShare(out io.Writer, label string, counts map[string]uint64, total uint64) {
	if total == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pct := 100 * float64(counts[k]) / float64(total)
		fmt.Fprintf(out, "  %s %-16s %8s ticks %6.2f%%\n", label, k, humanize.Comma(int64(counts[k])), pct)
	}
}

type lastTick struct {
	entry world.TickLogEntry
	ok    bool
}

func (l *lastTick) WriteTick(e world.TickLogEntry) error {
	l.entry = e
	l.ok = true
	return nil
}

// verifyTick steps w once and compares the produced tick with the logged one.
func verifyTick(w *world.World, e world.TickLogEntry) error {
	if e.Tick != w.CurrentTick() {
		return fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), e.Tick)
	}
	got := &lastTick{}
	w.SetTickLogger(got)
	w.Step()
	if !got.ok {
		return fmt.Errorf("tick %d: world produced no entry", e.Tick)
	}
	if got.entry.Agent != e.Agent {
		return fmt.Errorf("agent mismatch at tick %d: got=%+v want=%+v", e.Tick, got.entry.Agent, e.Agent)
	}
	if len(got.entry.Notifications) != len(e.Notifications) {
		return fmt.Errorf("notification count mismatch at tick %d: got=%d want=%d",
			e.Tick, len(got.entry.Notifications), len(e.Notifications))
	}
	for i, n := range got.entry.Notifications {
		if n != e.Notifications[i] {
			return fmt.Errorf("notification %d mismatch at tick %d: got=%+v want=%+v", i, e.Tick, n, e.Notifications[i])
		}
	}
	return nil
}
