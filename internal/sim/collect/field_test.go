package collect

import (
	"path/filepath"
	"testing"
)

func TestParseField(t *testing.T) {
	data := []byte(`{
	  "type":"FeatureCollection",
	  "features":[
	    {"type":"Feature","geometry":{"type":"Point","coordinates":[5,0]},"properties":{"id":"b","level":5}},
	    {"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"id":"a","level":1}}
	  ]
	}`)
	items, err := ParseField(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("unexpected items: %v", ids(items))
	}
	if items[1].PointValue() != 50 || items[1].Pos[0] != 5 {
		t.Fatalf("unexpected b: %+v", items[1])
	}
}

func TestParseField_Rejects(t *testing.T) {
	cases := []string{
		`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"id":"a"}}]}`,
		`{"type":"FeatureCollection","features":[
		  {"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"id":"a"}},
		  {"type":"Feature","geometry":{"type":"Point","coordinates":[1,0]},"properties":{"id":"a"}}]}`,
		`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"id":"a","level":0}}]}`,
	}
	for _, c := range cases {
		if _, err := ParseField([]byte(c)); err == nil {
			t.Fatalf("expected error for %s", c)
		}
	}
}

func TestLoadField_ConfigsFile(t *testing.T) {
	items, err := LoadField(filepath.Join("..", "..", "..", "configs", "field.geojson"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	pool := NewPool(items)
	if c, ok := pool.Get("ball-3"); !ok || c.PointValue() != 50 {
		t.Fatalf("ball-3 missing or wrong value")
	}
}
