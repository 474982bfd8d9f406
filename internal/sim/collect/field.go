package collect

import (
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Pool is every item placed in the world, regardless of status. It is the
// external enumeration the registry refreshes from.
type Pool struct {
	items []*Collectable
}

func NewPool(items []*Collectable) *Pool {
	return &Pool{items: items}
}

// Enumerate returns the items currently lying in the world.
func (p *Pool) Enumerate() []*Collectable {
	out := make([]*Collectable, 0, len(p.items))
	for _, c := range p.items {
		if c.Status == Available {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pool) All() []*Collectable { return p.items }

func (p *Pool) Get(id string) (*Collectable, bool) {
	for _, c := range p.items {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// LoadField reads a GeoJSON FeatureCollection of Point features. Each feature
// needs an "id" property (or feature id) and a "level" property.
func LoadField(path string) ([]*Collectable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	items, err := ParseField(data)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", path, err)
	}
	return items, nil
}

func ParseField(data []byte) ([]*Collectable, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	out := make([]*Collectable, 0, len(fc.Features))
	seen := map[string]bool{}
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry must be a Point", i)
		}
		id := featureID(f)
		if id == "" {
			id = fmt.Sprintf("item-%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("feature %d: duplicate id %q", i, id)
		}
		seen[id] = true
		level := 1
		if v, ok := f.Properties["level"].(float64); ok {
			level = int(v)
		}
		if level < 1 {
			return nil, fmt.Errorf("feature %s: level must be >= 1", id)
		}
		out = append(out, New(id, pt, level))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func featureID(f *geojson.Feature) string {
	if s, ok := f.Properties["id"].(string); ok && s != "" {
		return s
	}
	switch v := f.ID.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("item-%d", int(v))
	}
	return ""
}
