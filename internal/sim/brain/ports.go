package brain

import "github.com/paulmach/orb"

type PathResult int

const (
	PathInvalid PathResult = iota
	PathValid
)

// Navigator moves the agent. The brain never computes paths itself.
type Navigator interface {
	Position() orb.Point
	SetDestination(p orb.Point)
	// HasPendingPath is true while a path is still being computed.
	HasPendingPath() bool
	// RemainingDistance is the distance left to the current destination.
	RemainingDistance() float64
	CalculatePath(p orb.Point) PathResult
	Stop()
	Resume()
}

// Presenter plays animations. Calls are fire-and-forget.
type Presenter interface {
	SetWalking(walking bool)
	TriggerPickup()
	TriggerDrop()
}

type Health interface {
	Current() float64
	Max() float64
	IsAlive() bool
	Restore(amount float64) float64
}

type Scorer interface {
	Value() int
	Add(points int)
}

type nopPresenter struct{}

func (nopPresenter) SetWalking(bool) {}
func (nopPresenter) TriggerPickup()  {}
func (nopPresenter) TriggerDrop()    {}
