package collect

import "github.com/paulmach/orb"

// PointsPerLevel converts an item's level to its point value.
const PointsPerLevel = 10

type Status int

const (
	Available Status = iota
	Held
	Deposited
)

func (s Status) String() string {
	switch s {
	case Available:
		return "AVAILABLE"
	case Held:
		return "HELD"
	case Deposited:
		return "DEPOSITED"
	default:
		return "UNKNOWN"
	}
}

// Collectable is a world item that can be picked up and deposited at base.
// Pos is on the ground plane (x, z).
type Collectable struct {
	ID     string
	Pos    orb.Point
	Level  int
	Status Status
}

func New(id string, pos orb.Point, level int) *Collectable {
	if level < 1 {
		level = 1
	}
	return &Collectable{ID: id, Pos: pos, Level: level}
}

func (c *Collectable) PointValue() int {
	if c == nil {
		return 0
	}
	return c.Level * PointsPerLevel
}

// Hold attaches the item to the agent.
func (c *Collectable) Hold() { c.Status = Held }

// Deposit consumes a held item at base.
func (c *Collectable) Deposit() { c.Status = Deposited }

// Drop returns the item to the world at pos.
func (c *Collectable) Drop(pos orb.Point) {
	c.Pos = pos
	c.Status = Available
}
