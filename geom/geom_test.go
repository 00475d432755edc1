package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDirection(t *testing.T) {
	tests := []struct {
		v    orb.Point
		want float64
	}{
		{orb.Point{1, 0}, 0},
		{orb.Point{0, 1}, 90},
		{orb.Point{-1, 0}, 180},
		{orb.Point{0, -1}, 270},
		{orb.Point{0, 0}, 0},
	}
	for _, tc := range tests {
		if got := Direction(tc.v); !approx(got, tc.want) {
			t.Errorf("Direction(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestNormaliseAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-90, 270},
		{360, 0},
		{450, 90},
		{-720, 0},
		{45, 45},
	}
	for _, tc := range tests {
		if got := NormaliseAngle(tc.in); !approx(got, tc.want) {
			t.Errorf("NormaliseAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFromDirectionRoundTrip(t *testing.T) {
	v := FromDirection(90, 100)
	if !approx(v[0], 0) || !approx(v[1], 100) {
		t.Errorf("FromDirection(90, 100) = %v, want (0,100)", v)
	}
	if got := Length(v); !approx(got, 100) {
		t.Errorf("Length = %v, want 100", got)
	}
}

func TestOutsideDistance(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}
	if d := OutsideDistance(b, orb.Point{50, 50}); d != 0 {
		t.Errorf("inside point distance = %v, want 0", d)
	}
	if d := OutsideDistance(b, orb.Point{-30, 50}); !approx(d, 30) {
		t.Errorf("left point distance = %v, want 30", d)
	}
	if d := OutsideDistance(b, orb.Point{103, 104}); !approx(d, 5) {
		t.Errorf("corner point distance = %v, want 5", d)
	}
}

func TestNear(t *testing.T) {
	if !Near(orb.Point{0, 0}, orb.Point{3, 4}, 5) {
		t.Error("expected points 5 apart to be near with tolerance 5")
	}
	if Near(orb.Point{0, 0}, orb.Point{3, 4}, 4.9) {
		t.Error("expected points 5 apart not to be near with tolerance 4.9")
	}
}
