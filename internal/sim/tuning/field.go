package tuning

import "github.com/paulmach/orb"

// DropPointXZ reports the configured drop point, if any.
func (f Field) DropPointXZ() (orb.Point, bool) {
	if len(f.DropPoint) != 2 {
		return orb.Point{}, false
	}
	return orb.Point{f.DropPoint[0], f.DropPoint[1]}, true
}

func (f Field) SpawnXZ() orb.Point {
	if len(f.Spawn) == 2 {
		return orb.Point{f.Spawn[0], f.Spawn[1]}
	}
	if p, ok := f.DropPointXZ(); ok {
		return p
	}
	return orb.Point{}
}

// WorldBound returns the walkable area. ok is false when the field is unbounded.
func (f Field) WorldBound() (orb.Bound, bool) {
	if len(f.Bounds) != 4 {
		return orb.Bound{}, false
	}
	return rect(f.Bounds), true
}

func (f Field) ObstacleBounds() []orb.Bound {
	out := make([]orb.Bound, 0, len(f.Obstacles))
	for _, o := range f.Obstacles {
		if len(o) != 4 {
			continue
		}
		out = append(out, rect(o))
	}
	return out
}

func rect(v []float64) orb.Bound {
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
}
