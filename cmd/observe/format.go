package main

import (
	"fmt"
	"strings"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
)

// formatNote renders one notification as a single display line.
func formatNote(n protocol.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%d %s", n.Tick, n.Type)
	switch n.Type {
	case protocol.NoteHealthChanged:
		fmt.Fprintf(&b, " health=%.1f", n.Value)
	case protocol.NoteScoreChanged:
		fmt.Fprintf(&b, " score=%d", n.Score)
	case protocol.NoteDeposit:
		fmt.Fprintf(&b, " item=%s points=%d score=%d", n.ItemID, n.Points, n.Score)
	case protocol.NoteStrategyChanged:
		fmt.Fprintf(&b, " strategy=%s", n.Strategy)
	case protocol.NoteStateChanged:
		fmt.Fprintf(&b, " state=%s", n.State)
	case protocol.NoteTargetSelected, protocol.NotePickup:
		fmt.Fprintf(&b, " item=%s points=%d", n.ItemID, n.Points)
	case protocol.NoteTargetAbandoned, protocol.NoteTargetEvicted:
		fmt.Fprintf(&b, " item=%s", n.ItemID)
	}
	if n.Reason != "" {
		fmt.Fprintf(&b, " reason=%q", n.Reason)
	}
	return b.String()
}

func formatStatus(tick uint64, a observerproto.AgentState) string {
	s := fmt.Sprintf("t=%d status pos=(%.1f,%.1f) health=%.1f/%.0f score=%d %s/%s",
		tick, a.Pos[0], a.Pos[1], a.Health, a.MaxHealth, a.Score, a.Strategy, a.State)
	if a.Phase != "" {
		s += " phase=" + a.Phase
	}
	if a.TargetID != "" {
		s += " target=" + a.TargetID
	}
	if a.HeldID != "" {
		s += " held=" + a.HeldID
	}
	if !a.Alive {
		s += " DEAD"
	}
	return s
}
