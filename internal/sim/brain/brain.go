// Package brain is the agent's control loop: it picks targets through the
// active strategy, walks to them, commits on arrival and carries them back to
// the drop point.
//
// A Brain is driven by Tick from a single goroutine. Only New can fail, when
// a required collaborator is missing. Tick never returns errors: every
// failure (no target, unreachable target, missing drop point, death) degrades
// to a safe state and is retried on a later tick.
package brain

import (
	"errors"
	"io"
	"log"

	"github.com/paulmach/orb"

	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/forecast"
	"caddie.ai/internal/sim/notify"
	"caddie.ai/internal/sim/selector"
	"caddie.ai/internal/sim/strategy"
)

type Config struct {
	// DropPoint nil puts the brain in degraded mode: it never starts a trip
	// it cannot finish.
	DropPoint *orb.Point

	// AverageSpeed and DrainRate feed the trip forecast. They must match the
	// navigator speed and the health drain.
	AverageSpeed float64
	DrainRate    float64

	InitialStrategy   strategy.Kind
	Thresholds        selector.Thresholds
	SafetyMarginPct   float64
	SafeRadius        float64
	CriticalHealthPct float64

	StoppingDistance float64
	ArrivalDistance  float64
	RestoreAmount    float64

	// Seconds.
	SearchInterval float64
	PickupDelay    float64
	ResumeDelay    float64
	DropDelay      float64
}

type Deps struct {
	Registry  *collect.Registry
	Source    collect.Source
	Navigator Navigator
	Presenter Presenter
	Health    Health
	Score     Scorer
	Out       notify.Emitter
	Logger    *log.Logger
}

type Brain struct {
	cfg Config

	reg    *collect.Registry
	src    collect.Source
	nav    Navigator
	pres   Presenter
	health Health
	score  Scorer
	out    notify.Emitter
	log    *log.Logger

	strategies strategy.Set
	selector   *selector.Selector
	model      forecast.Model
	dropPoint  orb.Point
	hasDrop    bool

	state        State
	phase        Phase
	phaseElapsed float64

	// target is claimed in the registry but not yet taken.
	target *collect.Collectable
	// held has passed the commit point.
	held *collect.Collectable

	sinceSearch float64
	searched    bool
	enRoute     bool
	sinceRoute  float64

	degradedLogged bool
}

// New builds a brain. Navigator, Health and Score are required; the other
// collaborators fall back to no-op or empty defaults.
func New(cfg Config, deps Deps) (*Brain, error) {
	switch {
	case deps.Navigator == nil:
		return nil, errors.New("brain: nil navigator")
	case deps.Health == nil:
		return nil, errors.New("brain: nil health")
	case deps.Score == nil:
		return nil, errors.New("brain: nil score")
	}
	if deps.Registry == nil {
		deps.Registry = collect.NewRegistry()
	}
	if deps.Presenter == nil {
		deps.Presenter = nopPresenter{}
	}
	if deps.Out == nil {
		deps.Out = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.InitialStrategy == 0 {
		cfg.InitialStrategy = strategy.KindClosest
	}
	if cfg.ArrivalDistance <= 0 {
		cfg.ArrivalDistance = cfg.StoppingDistance
	}

	b := &Brain{
		cfg:    cfg,
		reg:    deps.Registry,
		src:    deps.Source,
		nav:    deps.Navigator,
		pres:   deps.Presenter,
		health: deps.Health,
		score:  deps.Score,
		out:    deps.Out,
		log:    deps.Logger,
		state:  Searching,
	}
	if cfg.DropPoint != nil {
		b.dropPoint = *cfg.DropPoint
		b.hasDrop = true
	}
	b.model = forecast.Model{
		DropPoint:    b.dropPoint,
		AverageSpeed: cfg.AverageSpeed,
		DrainRate:    cfg.DrainRate,
	}
	b.strategies = strategy.NewSet(strategy.Config{
		Forecast:        b.model,
		MaxHealth:       deps.Health.Max(),
		SafetyMarginPct: cfg.SafetyMarginPct,
		SafeRadius:      cfg.SafeRadius,
	})
	b.selector = selector.New(cfg.Thresholds, cfg.InitialStrategy, deps.Out)
	return b, nil
}

func (b *Brain) State() State                  { return b.state }
func (b *Brain) Phase() Phase                  { return b.phase }
func (b *Brain) Target() *collect.Collectable  { return b.target }
func (b *Brain) Held() *collect.Collectable    { return b.held }
func (b *Brain) ActiveStrategy() strategy.Kind { return b.selector.Active() }
func (b *Brain) Registry() *collect.Registry   { return b.reg }
func (b *Brain) Forecast() forecast.Model      { return b.model }
func (b *Brain) Degraded() bool                { return !b.hasDrop }
func (b *Brain) DropPoint() (orb.Point, bool)  { return b.dropPoint, b.hasDrop }

// Tick advances the brain by dt seconds. While the agent is dead nothing
// moves: state, target and held item stay exactly as they were.
func (b *Brain) Tick(dt float64) {
	if !b.health.IsAlive() {
		return
	}

	// Strategy first, so a change and a transition can share a tick. Once
	// the item is taken the trip is no longer re-evaluated.
	kind, changed := b.selector.Evaluate(b.health.Current(), b.health.Max())
	if changed {
		b.log.Printf("strategy -> %s (health %.1f/%.0f)", kind, b.health.Current(), b.health.Max())
		if b.state == MovingToTarget && b.target != nil {
			b.reevaluate(kind)
		}
	}

	switch b.state {
	case Searching:
		b.tickSearching(dt)
	case MovingToTarget:
		b.tickMoving()
	case ReturningToBase:
		b.tickReturning(dt)
	}
}

func (b *Brain) tickSearching(dt float64) {
	if !b.hasDrop {
		if !b.degradedLogged {
			b.log.Printf("no drop point configured; staying idle")
			b.degradedLogged = true
		}
		return
	}
	b.sinceSearch += dt
	if b.searched && b.sinceSearch < b.cfg.SearchInterval {
		return
	}
	b.sinceSearch = 0
	b.searched = true

	if b.reg.Len() == 0 {
		if n := b.reg.Refresh(b.src); n > 0 {
			b.log.Printf("registry refreshed: %d items", n)
		}
	}
	next := b.selectTarget(b.selector.Active())
	if next == nil {
		return
	}
	b.pursue(next)
}

func (b *Brain) selectTarget(kind strategy.Kind) *collect.Collectable {
	return b.strategies.Get(kind).Select(b.reg.Candidates(), b.nav.Position(), b.health.Current())
}

// pursue claims c and starts walking to it. An unreachable item is evicted
// and the brain goes back to searching.
func (b *Brain) pursue(c *collect.Collectable) {
	if !b.reg.Claim(c.ID) {
		return
	}
	b.target = c
	b.emit(protocol.Notification{Type: protocol.NoteTargetSelected, ItemID: c.ID, Points: c.PointValue()})
	b.log.Printf("target %s (level %d, %d pts) via %s", c.ID, c.Level, c.PointValue(), b.selector.Active())
	b.setState(MovingToTarget)

	if !b.headTo(c.Pos) {
		b.evictTarget("unreachable")
	}
}

func (b *Brain) evictTarget(reason string) {
	c := b.target
	b.target = nil
	b.reg.Evict(c.ID)
	b.emit(protocol.Notification{Type: protocol.NoteTargetEvicted, ItemID: c.ID, Reason: reason})
	b.log.Printf("target %s evicted: %s", c.ID, reason)
	b.stopWalking()
	b.setState(Searching)
}

func (b *Brain) tickMoving() {
	c := b.target
	if c == nil || !b.reg.IsClaimed(c.ID) {
		// The item left the registry under us (or was never claimed).
		b.target = nil
		b.stopWalking()
		b.setState(Searching)
		return
	}
	if b.nav.HasPendingPath() {
		return
	}
	if b.nav.RemainingDistance() <= b.cfg.StoppingDistance {
		b.commit()
	}
}

// reevaluate runs on a strategy change while walking to an uncommitted
// target. A trip that still ends above the critical level is kept.
func (b *Brain) reevaluate(kind strategy.Kind) {
	c := b.target
	predicted := b.model.HealthAfterTrip(c.Pos, b.nav.Position(), b.health.Current())
	critical := b.cfg.CriticalHealthPct / 100 * b.health.Max()
	if predicted >= critical {
		b.log.Printf("keeping %s under %s (predicted %.1f >= %.1f)", c.ID, kind, predicted, critical)
		return
	}

	// Select before releasing so the abandoned item is not picked straight back.
	next := b.selectTarget(kind)
	b.reg.Release(c.ID)
	b.target = nil
	b.emit(protocol.Notification{Type: protocol.NoteTargetAbandoned, ItemID: c.ID, Reason: "forecast below critical"})
	b.log.Printf("abandoning %s (predicted %.1f < %.1f)", c.ID, predicted, critical)

	if next == nil {
		b.log.Printf("no safe target; returning to base")
		b.returnToBase()
		return
	}
	b.pursue(next)
}

// commit is the single commit point of a trip.
func (b *Brain) commit() {
	c := b.target
	b.target = nil
	taken, ok := b.reg.Take(c.ID)
	if !ok {
		b.stopWalking()
		b.setState(Searching)
		return
	}
	b.held = taken
	b.log.Printf("committed %s", taken.ID)

	b.nav.Stop()
	b.pres.SetWalking(false)
	b.pres.TriggerPickup()
	b.enRoute = false
	b.setState(ReturningToBase)
	b.setPhase(PhasePickupBegun)
}

// returnToBase heads home without an item.
func (b *Brain) returnToBase() {
	b.held = nil
	b.setState(ReturningToBase)
	b.setPhase(PhaseNone)
	b.enRoute = b.headTo(b.dropPoint)
}

func (b *Brain) tickReturning(dt float64) {
	b.phaseElapsed += dt
	for {
		switch b.phase {
		case PhasePickupBegun:
			if b.phaseElapsed < b.cfg.PickupDelay {
				return
			}
			b.emit(protocol.Notification{Type: protocol.NotePickup, ItemID: b.held.ID, Points: b.held.PointValue()})
			b.setPhase(PhasePickupFinalizing)

		case PhasePickupFinalizing:
			if b.phaseElapsed < b.cfg.ResumeDelay {
				return
			}
			b.setPhase(PhaseNone)
			b.enRoute = b.headTo(b.dropPoint)
			return

		case PhaseDropBegun:
			if b.phaseElapsed < b.cfg.DropDelay {
				return
			}
			b.deposit()
			return

		default:
			// Arrival with an item starts the drop in the same tick.
			if !b.tickWalkingHome(dt) {
				return
			}
		}
	}
}

// tickWalkingHome reports whether the drop sequence just began.
func (b *Brain) tickWalkingHome(dt float64) bool {
	if !b.enRoute {
		// Drop point unreachable: hold still and retry on the search cadence.
		b.sinceRoute += dt
		if b.sinceRoute < b.cfg.SearchInterval {
			return false
		}
		b.sinceRoute = 0
		if b.enRoute = b.headTo(b.dropPoint); !b.enRoute {
			return false
		}
	}
	if b.nav.HasPendingPath() || b.nav.RemainingDistance() > b.cfg.ArrivalDistance {
		return false
	}

	b.stopWalking()
	b.enRoute = false
	if b.held == nil {
		b.setState(Searching)
		return false
	}
	b.pres.TriggerDrop()
	b.setPhase(PhaseDropBegun)
	return true
}

func (b *Brain) deposit() {
	c := b.held
	b.held = nil
	points := c.PointValue()
	c.Deposit()
	b.score.Add(points)
	b.health.Restore(b.cfg.RestoreAmount)
	b.emit(protocol.Notification{Type: protocol.NoteDeposit, ItemID: c.ID, Points: points, Score: b.score.Value()})
	b.log.Printf("deposited %s for %d pts (score %d)", c.ID, points, b.score.Value())

	b.setPhase(PhaseNone)
	b.setState(Searching)
	b.searched = false
}

// Respawn clears a frozen brain after the owner revived the agent. A held
// item is dropped where the agent stands and a claimed one is released, so
// both become candidates again.
func (b *Brain) Respawn() {
	if c := b.held; c != nil {
		c.Drop(b.nav.Position())
		b.reg.Insert(c)
		b.held = nil
	}
	if c := b.target; c != nil {
		b.reg.Release(c.ID)
		b.target = nil
	}
	b.stopWalking()
	b.enRoute = false
	b.setPhase(PhaseNone)
	b.setState(Searching)
	b.searched = false
	b.emit(protocol.Notification{Type: protocol.NoteRespawn})
}

func (b *Brain) headTo(p orb.Point) bool {
	if b.nav.CalculatePath(p) != PathValid {
		return false
	}
	b.nav.SetDestination(p)
	b.nav.Resume()
	b.pres.SetWalking(true)
	return true
}

func (b *Brain) stopWalking() {
	b.nav.Stop()
	b.pres.SetWalking(false)
}

func (b *Brain) setState(s State) {
	if s == b.state {
		return
	}
	b.state = s
	b.emit(protocol.Notification{Type: protocol.NoteStateChanged, State: s.String()})
}

func (b *Brain) setPhase(p Phase) {
	b.phase = p
	b.phaseElapsed = 0
}

func (b *Brain) emit(n protocol.Notification) { b.out.Emit(n) }
