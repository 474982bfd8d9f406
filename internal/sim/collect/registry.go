package collect

// Source enumerates the items currently lying in the world.
type Source interface {
	Enumerate() []*Collectable
}

// Registry is the brain's view of the items it may pursue. It is owned by a
// single brain and mutated only from its tick, so it carries no lock.
//
// An item is in one of three registry states: absent, available, or claimed.
// Claimed items stay in the registry but are hidden from Candidates until they
// are released, taken (commit) or evicted.
type Registry struct {
	items   []*Collectable
	claimed map[string]bool
}

func NewRegistry(items ...*Collectable) *Registry {
	r := &Registry{claimed: map[string]bool{}}
	for _, c := range items {
		r.Insert(c)
	}
	return r
}

func (r *Registry) Len() int { return len(r.items) }

func (r *Registry) Contains(id string) bool { return r.indexOf(id) >= 0 }

func (r *Registry) IsClaimed(id string) bool { return r.claimed[id] }

// Candidates returns a fresh slice of unclaimed available items in insertion
// order. Callers may reorder or drop entries freely.
func (r *Registry) Candidates() []*Collectable {
	out := make([]*Collectable, 0, len(r.items))
	for _, c := range r.items {
		if c.Status != Available || r.claimed[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Claim marks id as the current target. It fails for unknown or already
// claimed items.
func (r *Registry) Claim(id string) bool {
	if r.indexOf(id) < 0 || r.claimed[id] {
		return false
	}
	r.claimed[id] = true
	return true
}

// Release returns a claimed item to the candidate pool unmodified.
func (r *Registry) Release(id string) {
	delete(r.claimed, id)
}

// Take is the commit point: the item leaves the registry and becomes Held.
func (r *Registry) Take(id string) (*Collectable, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return nil, false
	}
	c := r.items[i]
	r.removeAt(i)
	c.Hold()
	return c, true
}

// Evict drops an unreachable item from the registry without touching the item.
func (r *Registry) Evict(id string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.removeAt(i)
	return true
}

// Insert adds c if it is available and not already present.
func (r *Registry) Insert(c *Collectable) bool {
	if c == nil || c.Status != Available || r.Contains(c.ID) {
		return false
	}
	r.items = append(r.items, c)
	return true
}

// Refresh repopulates an empty registry from src and reports how many items
// were added. A non-empty registry is left alone.
func (r *Registry) Refresh(src Source) int {
	if src == nil || len(r.items) > 0 {
		return 0
	}
	n := 0
	for _, c := range src.Enumerate() {
		if r.Insert(c) {
			n++
		}
	}
	return n
}

func (r *Registry) indexOf(id string) int {
	for i, c := range r.items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) removeAt(i int) {
	delete(r.claimed, r.items[i].ID)
	r.items = append(r.items[:i], r.items[i+1:]...)
}
