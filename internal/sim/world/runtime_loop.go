package world

import (
	"context"
	"encoding/json"
	"time"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
)

// ObserverJoinRequest registers a read-only observer session that receives
// one TICK message per tick on TickOut. All observer state is maintained by
// the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID string
	TickOut   chan []byte

	Types     []string
	WithItems bool
}

// ObserverSubscribeRequest updates an existing observer session subscription settings.
type ObserverSubscribeRequest struct {
	SessionID string
	Types     []string
	WithItems bool
}

type observerClient struct {
	id        string
	tickOut   chan []byte
	types     map[string]bool
	withItems bool
}

func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                       { return w.observerLeave }

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case resp := <-w.bootstrapReq:
			resp <- w.bootstrap()
		case <-ticker.C:
			w.Step()
		}
	}
}

func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

// Bootstrap asks the running world loop for the current state.
func (w *World) Bootstrap(ctx context.Context) (observerproto.BootstrapResponse, error) {
	resp := make(chan observerproto.BootstrapResponse, 1)
	select {
	case w.bootstrapReq <- resp:
	case <-ctx.Done():
		return observerproto.BootstrapResponse{}, ctx.Err()
	}
	select {
	case r := <-resp:
		return r, nil
	case <-ctx.Done():
		return observerproto.BootstrapResponse{}, ctx.Err()
	}
}

func (w *World) bootstrap() observerproto.BootstrapResponse {
	return observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		RunID:           w.runID,
		Tick:            w.tick.Load(),
		FieldParams:     w.fieldParams(),
		Agent:           w.agentState(),
		Items:           w.itemStates(),
	}
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	w.observers[req.SessionID] = &observerClient{
		id:        req.SessionID,
		tickOut:   req.TickOut,
		types:     typeSet(req.Types),
		withItems: req.WithItems,
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.types = typeSet(req.Types)
	c.withItems = req.WithItems
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

func typeSet(types []string) map[string]bool {
	if len(types) == 0 {
		return nil
	}
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

func (w *World) broadcastTick(tick uint64, agent observerproto.AgentState, batch []protocol.Notification) {
	if len(w.observers) == 0 {
		return
	}
	var items []observerproto.ItemState
	for _, c := range w.observers {
		msg := observerproto.TickMsg{
			Type:            protocol.TypeTick,
			ProtocolVersion: observerproto.Version,
			Tick:            tick,
			Agent:           agent,
			Notifications:   filterNotes(batch, c.types),
		}
		if c.withItems {
			if items == nil {
				items = w.itemStates()
			}
			msg.Items = items
		}
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		sendLatest(c.tickOut, b)
	}
}

func filterNotes(batch []protocol.Notification, types map[string]bool) []protocol.Notification {
	if types == nil {
		return batch
	}
	var out []protocol.Notification
	for _, n := range batch {
		if types[n.Type] {
			out = append(out, n)
		}
	}
	return out
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
