package brain

// State is the top-level control state.
type State int

const (
	Searching State = iota
	MovingToTarget
	ReturningToBase
)

func (s State) String() string {
	switch s {
	case Searching:
		return "Searching"
	case MovingToTarget:
		return "MovingToTarget"
	case ReturningToBase:
		return "ReturningToBase"
	default:
		return "Unknown"
	}
}

// Phase is a timed sub-step of ReturningToBase. The pickup runs
// PickupBegun -> PickupFinalizing -> walking; the drop runs DropBegun ->
// deposit.
type Phase int

const (
	PhaseNone Phase = iota
	PhasePickupBegun
	PhasePickupFinalizing
	PhaseDropBegun
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "None"
	case PhasePickupBegun:
		return "PickupBegun"
	case PhasePickupFinalizing:
		return "PickupFinalizing"
	case PhaseDropBegun:
		return "DropBegun"
	default:
		return "Unknown"
	}
}
