package observerproto

import "caddie.ai/internal/protocol"

// Version is the observer protocol version (separate from protocol.Version).
const Version = "0.1"

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Optional notification type filter; empty means everything.
	Types []string `json:"types,omitempty"`
	// Include the full item list in every TICK.
	WithItems bool `json:"with_items,omitempty"`
}

// HTTP response for GET /v1/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	RunID           string      `json:"run_id"`
	Tick            uint64      `json:"tick"`
	FieldParams     FieldParams `json:"field_params"`
	Agent           AgentState  `json:"agent"`
	Items           []ItemState `json:"items"`
}

type FieldParams struct {
	TickRateHz int          `json:"tick_rate_hz"`
	MaxHealth  float64      `json:"max_health"`
	DropPoint  *[2]float64  `json:"drop_point,omitempty"`
	Bounds     *[4]float64  `json:"bounds,omitempty"`
	Obstacles  [][4]float64 `json:"obstacles,omitempty"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Agent         AgentState              `json:"agent"`
	Items         []ItemState             `json:"items,omitempty"`
	Notifications []protocol.Notification `json:"notifications,omitempty"`
}

type AgentState struct {
	Pos       [2]float64 `json:"pos"`
	Health    float64    `json:"health"`
	MaxHealth float64    `json:"max_health"`
	Alive     bool       `json:"alive"`
	Score     int        `json:"score"`
	Strategy  string     `json:"strategy"`
	State     string     `json:"state"`
	Phase     string     `json:"phase,omitempty"`
	Walking   bool       `json:"walking"`
	TargetID  string     `json:"target_id,omitempty"`
	HeldID    string     `json:"held_id,omitempty"`
}

type ItemState struct {
	ID     string     `json:"id"`
	Pos    [2]float64 `json:"pos"`
	Level  int        `json:"level"`
	Points int        `json:"points"`
	Status string     `json:"status"`
}
