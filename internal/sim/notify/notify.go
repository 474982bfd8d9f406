// Package notify carries the agent core's outbound notifications.
//
// Producers append to an Outbox during a tick. After the tick the owner drains
// the Outbox and hands the batch to a Bus, which fans it out to subscribers.
// Nothing is delivered while the tick is still mutating state.
package notify

import (
	"sort"
	"sync"

	"caddie.ai/internal/protocol"
)

// Emitter is what producers see.
type Emitter interface {
	Emit(n protocol.Notification)
}

type discard struct{}

func (discard) Emit(protocol.Notification) {}

// Discard drops everything.
var Discard Emitter = discard{}

// Outbox buffers a tick's notifications in emission order.
type Outbox struct {
	tick uint64
	buf  []protocol.Notification
}

func NewOutbox() *Outbox { return &Outbox{} }

// SetTick stamps subsequent notifications.
func (o *Outbox) SetTick(tick uint64) { o.tick = tick }

func (o *Outbox) Emit(n protocol.Notification) {
	n.Tick = o.tick
	o.buf = append(o.buf, n)
}

func (o *Outbox) Len() int { return len(o.buf) }

// Drain returns the buffered batch and empties the outbox.
func (o *Outbox) Drain() []protocol.Notification {
	if len(o.buf) == 0 {
		return nil
	}
	out := o.buf
	o.buf = nil
	return out
}

type Handler func(batch []protocol.Notification)

// Bus fans batches out to subscribers. Subscribe and Unsubscribe are safe
// from any goroutine; handlers run on the publishing goroutine in
// subscription order and must not block.
type Bus struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]Handler
}

func NewBus() *Bus {
	return &Bus{subs: map[uint64]Handler{}}
}

func (b *Bus) Subscribe(h Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[b.next] = h
	return b.next
}

func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) Publish(batch []protocol.Notification) {
	if len(batch) == 0 {
		return
	}
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(batch)
	}
}
