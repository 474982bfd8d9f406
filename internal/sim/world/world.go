// Package world hosts one agent run: it owns the collectables, the
// navigator, vitals and brain, and advances them on a fixed tick.
//
// All mutable state is touched only by the goroutine calling Step (usually
// Run). Other goroutines talk to the world through its request channels.
package world

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/brain"
	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/navigator"
	"caddie.ai/internal/sim/notify"
	"caddie.ai/internal/sim/selector"
	"caddie.ai/internal/sim/strategy"
	"caddie.ai/internal/sim/tuning"
	"caddie.ai/internal/sim/vitals"
)

type Config struct {
	// RunID defaults to a random UUID.
	RunID  string
	Tuning tuning.Tuning

	// Items overrides Tuning.Field.Items (e.g. a GeoJSON field file).
	Items []*collect.Collectable

	Logger *log.Logger
}

type World struct {
	cfg   tuning.Tuning
	runID string
	dt    float64
	log   *log.Logger

	tick atomic.Uint64

	pool   *collect.Pool
	reg    *collect.Registry
	nav    *navigator.Navigator
	pres   *presenter
	health *vitals.Health
	score  *vitals.Score
	brain  *brain.Brain
	out    *notify.Outbox
	bus    *notify.Bus

	deadFor float64
	deaths  int

	// Optional (may be nil). Implemented in internal/persistence/*.
	tickLogger TickLogger

	observers     map[string]*observerClient
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	bootstrapReq  chan chan observerproto.BootstrapResponse

	stop     chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) (*World, error) {
	t := cfg.Tuning
	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	initial, err := strategy.ParseKind(t.Strategy.Initial)
	if err != nil {
		return nil, fmt.Errorf("strategy.initial: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	items := cfg.Items
	if items == nil {
		items = itemsFromTuning(t.Field.Items)
	}

	w := &World{
		cfg:   t,
		runID: runID,
		dt:    t.TickSeconds(),
		log:   logger,

		pool: collect.NewPool(items),
		reg:  collect.NewRegistry(),
		out:  notify.NewOutbox(),
		bus:  notify.NewBus(),
		pres: &presenter{log: logger},

		observers:     map[string]*observerClient{},
		observerJoin:  make(chan ObserverJoinRequest, 64),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 64),
		bootstrapReq:  make(chan chan observerproto.BootstrapResponse, 16),
		stop:          make(chan struct{}),
	}
	w.reg.Refresh(w.pool)
	w.health = vitals.NewHealth(t.Health.Max, t.Health.DrainRate, w.out)
	w.score = vitals.NewScore(w.out)

	bound, _ := t.Field.WorldBound()
	w.nav = navigator.New(navigator.Config{
		Speed:        t.Movement.Speed,
		World:        bound,
		Obstacles:    t.Field.ObstacleBounds(),
		PendingTicks: 1,
	}, t.Field.SpawnXZ())

	var drop *orb.Point
	if p, ok := t.Field.DropPointXZ(); ok {
		drop = &p
	}
	w.brain, err = brain.New(brain.Config{
		DropPoint: drop,
		// Speed and drain come from the same tuning that drives the
		// navigator and health, so forecasts match what actually happens.
		AverageSpeed:    t.Movement.Speed,
		DrainRate:       t.Health.DrainRate,
		InitialStrategy: initial,
		Thresholds: selector.Thresholds{
			Greedy: t.Strategy.GreedyThreshold,
			Safety: t.Strategy.SafetyThreshold,
		},
		SafetyMarginPct:   t.Strategy.SafetyMarginPct,
		SafeRadius:        t.Strategy.SafeRadius,
		CriticalHealthPct: t.Strategy.CriticalHealthPct,
		StoppingDistance:  t.Movement.StoppingDistance,
		ArrivalDistance:   t.Movement.ArrivalDistance,
		RestoreAmount:     t.Health.RestoreAmount,
		SearchInterval:    t.Strategy.SearchIntervalSec,
		PickupDelay:       t.Actions.PickupSeconds,
		ResumeDelay:       t.Actions.ResumeSeconds,
		DropDelay:         t.Actions.DropSeconds,
	}, brain.Deps{
		Registry:  w.reg,
		Source:    w.pool,
		Navigator: w.nav,
		Presenter: w.pres,
		Health:    w.health,
		Score:     w.score,
		Out:       w.out,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func itemsFromTuning(specs []tuning.ItemSpec) []*collect.Collectable {
	out := make([]*collect.Collectable, 0, len(specs))
	for _, s := range specs {
		var pos orb.Point
		if len(s.Pos) == 2 {
			pos = orb.Point{s.Pos[0], s.Pos[1]}
		}
		out = append(out, collect.New(s.ID, pos, s.Level))
	}
	return out
}

func (w *World) RunID() string                   { return w.runID }
func (w *World) Tuning() tuning.Tuning           { return w.cfg }
func (w *World) CurrentTick() uint64             { return w.tick.Load() }
func (w *World) Brain() *brain.Brain             { return w.brain }
func (w *World) Health() *vitals.Health          { return w.health }
func (w *World) Score() int                      { return w.score.Value() }
func (w *World) Deaths() int                     { return w.deaths }
func (w *World) Navigator() *navigator.Navigator { return w.nav }
func (w *World) Pool() *collect.Pool             { return w.pool }

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

// Subscribe registers h for every per-tick notification batch. Handlers run
// on the world goroutine after the tick completes.
func (w *World) Subscribe(h notify.Handler) uint64 { return w.bus.Subscribe(h) }
func (w *World) Unsubscribe(id uint64)             { w.bus.Unsubscribe(id) }

// Step advances the world by one tick and returns the notifications it
// produced.
func (w *World) Step() []protocol.Notification {
	nowTick := w.tick.Load()
	w.out.SetTick(nowTick)

	w.health.Tick(w.dt)
	w.brain.Tick(w.dt)
	if w.health.IsAlive() {
		w.nav.Step(w.dt)
	}
	w.systemRespawn(nowTick)

	batch := w.out.Drain()
	for _, n := range batch {
		if n.Type == protocol.NoteDeath {
			w.deaths++
			w.log.Printf("tick %d: agent died (score %d)", nowTick, w.score.Value())
		}
	}
	w.bus.Publish(batch)

	agent := w.agentState()
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			RunID:         w.runID,
			Tick:          nowTick,
			Agent:         agent,
			Notifications: batch,
		})
	}
	w.broadcastTick(nowTick, agent, batch)

	w.tick.Add(1)
	return batch
}

// systemRespawn revives a dead agent after RespawnAfterSeconds. A zero delay
// leaves the agent frozen for the rest of the run.
func (w *World) systemRespawn(nowTick uint64) {
	if w.health.IsAlive() {
		w.deadFor = 0
		return
	}
	if w.cfg.RespawnAfterSeconds <= 0 {
		return
	}
	w.deadFor += w.dt
	if w.deadFor < w.cfg.RespawnAfterSeconds {
		return
	}
	w.deadFor = 0

	// Items go back where the agent fell, before it is moved.
	w.brain.Respawn()
	w.health.Revive()
	home := w.cfg.Field.SpawnXZ()
	if p, ok := w.cfg.Field.DropPointXZ(); ok {
		home = p
	}
	w.nav.Warp(home)
	w.log.Printf("tick %d: agent respawned at %v", nowTick, home)
}

func (w *World) agentState() observerproto.AgentState {
	st := observerproto.AgentState{
		Pos:       [2]float64(w.nav.Position()),
		Health:    w.health.Current(),
		MaxHealth: w.health.Max(),
		Alive:     w.health.IsAlive(),
		Score:     w.score.Value(),
		Strategy:  w.brain.ActiveStrategy().String(),
		State:     w.brain.State().String(),
		Walking:   w.pres.walking,
	}
	if p := w.brain.Phase(); p != brain.PhaseNone {
		st.Phase = p.String()
	}
	if c := w.brain.Target(); c != nil {
		st.TargetID = c.ID
	}
	if c := w.brain.Held(); c != nil {
		st.HeldID = c.ID
	}
	return st
}

func (w *World) itemStates() []observerproto.ItemState {
	all := w.pool.All()
	out := make([]observerproto.ItemState, 0, len(all))
	for _, c := range all {
		out = append(out, observerproto.ItemState{
			ID:     c.ID,
			Pos:    [2]float64(c.Pos),
			Level:  c.Level,
			Points: c.PointValue(),
			Status: c.Status.String(),
		})
	}
	return out
}

func (w *World) fieldParams() observerproto.FieldParams {
	fp := observerproto.FieldParams{
		TickRateHz: w.cfg.TickRateHz,
		MaxHealth:  w.cfg.Health.Max,
	}
	if p, ok := w.cfg.Field.DropPointXZ(); ok {
		v := [2]float64(p)
		fp.DropPoint = &v
	}
	if b, ok := w.cfg.Field.WorldBound(); ok {
		v := [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
		fp.Bounds = &v
	}
	for _, o := range w.cfg.Field.ObstacleBounds() {
		fp.Obstacles = append(fp.Obstacles, [4]float64{o.Min[0], o.Min[1], o.Max[0], o.Max[1]})
	}
	return fp
}
