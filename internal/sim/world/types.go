package world

import (
	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
)

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry is the per-tick record written to the event log and index.
type TickLogEntry struct {
	RunID         string                   `json:"run_id"`
	Tick          uint64                   `json:"tick"`
	Agent         observerproto.AgentState `json:"agent"`
	Notifications []protocol.Notification  `json:"notifications,omitempty"`
}
