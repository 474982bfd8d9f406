package protocol

// Notification types emitted by the agent core. Display consumers subscribe
// to these; delivery order is only guaranteed within a single tick.
const (
	NoteHealthChanged   = "HEALTH_CHANGED"
	NoteDeath           = "DEATH"
	NoteScoreChanged    = "SCORE_CHANGED"
	NoteStrategyChanged = "STRATEGY_CHANGED"

	NoteStateChanged    = "STATE_CHANGED"
	NoteTargetSelected  = "TARGET_SELECTED"
	NoteTargetAbandoned = "TARGET_ABANDONED"
	NoteTargetEvicted   = "TARGET_EVICTED"
	NotePickup          = "PICKUP"
	NoteDeposit         = "DEPOSIT"
	NoteRespawn         = "RESPAWN"
)

var knownNotes = map[string]struct{}{
	NoteHealthChanged:   {},
	NoteDeath:           {},
	NoteScoreChanged:    {},
	NoteStrategyChanged: {},
	NoteStateChanged:    {},
	NoteTargetSelected:  {},
	NoteTargetAbandoned: {},
	NoteTargetEvicted:   {},
	NotePickup:          {},
	NoteDeposit:         {},
	NoteRespawn:         {},
}

func IsKnownNote(t string) bool {
	_, ok := knownNotes[t]
	return ok
}

// Notification is a single outbound event. Only the fields relevant to Type
// are set.
type Notification struct {
	Tick uint64 `json:"tick"`
	Type string `json:"type"`

	// HEALTH_CHANGED: current health.
	Value float64 `json:"value,omitempty"`
	// SCORE_CHANGED / DEPOSIT: running score.
	Score int `json:"score,omitempty"`
	// STRATEGY_CHANGED: display name of the new strategy.
	Strategy string `json:"strategy,omitempty"`
	// STATE_CHANGED: new control state.
	State string `json:"state,omitempty"`

	// Target notifications.
	ItemID string `json:"item_id,omitempty"`
	Points int    `json:"points,omitempty"`
	Reason string `json:"reason,omitempty"`
}
