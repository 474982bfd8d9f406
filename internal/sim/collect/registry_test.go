package collect

import (
	"testing"

	"github.com/paulmach/orb"
)

func testItems() []*Collectable {
	return []*Collectable{
		New("a", orb.Point{0, 0}, 1),
		New("b", orb.Point{5, 0}, 5),
		New("c", orb.Point{9, 9}, 2),
	}
}

func ids(cs []*Collectable) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestPointValue(t *testing.T) {
	if got := New("x", orb.Point{}, 3).PointValue(); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := New("x", orb.Point{}, 0).PointValue(); got != 10 {
		t.Fatalf("level should clamp to 1, got value %d", got)
	}
	var nilItem *Collectable
	if nilItem.PointValue() != 0 {
		t.Fatalf("nil item should be worth 0")
	}
}

func TestRegistry_ClaimHidesFromCandidates(t *testing.T) {
	r := NewRegistry(testItems()...)
	if !r.Claim("b") {
		t.Fatalf("claim b failed")
	}
	if r.Claim("b") {
		t.Fatalf("double claim should fail")
	}
	if got := ids(r.Candidates()); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("claimed item visible: %v", got)
	}
	if !r.Contains("b") {
		t.Fatalf("claim must not remove the item")
	}
	r.Release("b")
	if got := ids(r.Candidates()); len(got) != 3 || got[1] != "b" {
		t.Fatalf("release should restore b unmodified in place: %v", got)
	}
}

func TestRegistry_TakeIsCommit(t *testing.T) {
	items := testItems()
	r := NewRegistry(items...)
	r.Claim("a")
	c, ok := r.Take("a")
	if !ok || c != items[0] {
		t.Fatalf("take a failed")
	}
	if c.Status != Held {
		t.Fatalf("taken item should be held, got %s", c.Status)
	}
	if r.Contains("a") || r.IsClaimed("a") {
		t.Fatalf("taken item still tracked")
	}
	if r.Insert(c) {
		t.Fatalf("held item must not be re-inserted")
	}
	if _, ok := r.Take("a"); ok {
		t.Fatalf("second take should fail")
	}
}

func TestRegistry_EvictAndInsert(t *testing.T) {
	items := testItems()
	r := NewRegistry(items...)
	r.Claim("c")
	if !r.Evict("c") {
		t.Fatalf("evict failed")
	}
	if r.Len() != 2 || r.IsClaimed("c") {
		t.Fatalf("evict left state behind")
	}
	if items[2].Status != Available {
		t.Fatalf("evict must not change item status")
	}
	if !r.Insert(items[2]) || r.Len() != 3 {
		t.Fatalf("re-insert failed")
	}
	if r.Insert(items[2]) {
		t.Fatalf("duplicate insert should fail")
	}
}

func TestRegistry_CandidatesDoesNotAlias(t *testing.T) {
	r := NewRegistry(testItems()...)
	cs := r.Candidates()
	cs[0] = nil
	if r.Candidates()[0] == nil {
		t.Fatalf("candidates slice aliases registry storage")
	}
}

func TestRegistry_RefreshOnlyWhenEmpty(t *testing.T) {
	items := testItems()
	items[1].Hold()
	pool := NewPool(items)
	r := NewRegistry()
	if n := r.Refresh(pool); n != 2 {
		t.Fatalf("expected 2 available items, got %d", n)
	}
	if n := r.Refresh(pool); n != 0 {
		t.Fatalf("non-empty registry should not refresh, added %d", n)
	}
}
