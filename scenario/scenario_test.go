package scenario

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/geom"
)

var arena = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1200, 1200}}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(arena, DefaultOptions(7))
	b := Generate(arena, DefaultOptions(7))
	if len(a.Resources) != len(b.Resources) {
		t.Fatalf("node counts differ: %d vs %d", len(a.Resources), len(b.Resources))
	}
	for i := range a.Resources {
		if *a.Resources[i] != *b.Resources[i] {
			t.Errorf("node %d differs: %+v vs %+v", i, *a.Resources[i], *b.Resources[i])
		}
	}
}

func TestGenerateLayout(t *testing.T) {
	opts := DefaultOptions(42)
	l := Generate(arena, opts)
	if len(l.Bases) != 2 || l.Bases[0].Team == l.Bases[1].Team {
		t.Fatalf("bases = %+v", l.Bases)
	}
	for _, r := range l.Resources {
		if !geom.InBounds(arena, r.Pos) {
			t.Errorf("node %d at %v outside arena", r.ID, r.Pos)
		}
		if r.Payload < 10 || r.Payload > opts.MaxPayload {
			t.Errorf("node %d payload %d out of range", r.ID, r.Payload)
		}
		for _, b := range l.Bases {
			if geom.Distance(r.Pos, b.Pos) < 2*opts.BaseMargin {
				t.Errorf("node %d at %v inside base clearing", r.ID, r.Pos)
			}
		}
	}
}

func TestThresholdOneIsEmpty(t *testing.T) {
	opts := DefaultOptions(1)
	opts.Threshold = 1
	if l := Generate(arena, opts); len(l.Resources) != 0 || l.Total() != 0 {
		t.Errorf("threshold 1 produced %d nodes", len(l.Resources))
	}
}
