package layout

import (
	"math"
	"testing"
)

func TestBoxFromPolyNormalized(t *testing.T) {
	poly := &BoundingPoly{
		NormalizedVertices: []Vertex{{0.1, 0.2}, {0.5, 0.2}, {0.5, 0.4}, {0.1, 0.4}},
	}
	box := BoxFromPoly(poly)
	want := Box{0.1, 0.2, 0.5, 0.4}
	if box != want {
		t.Errorf("BoxFromPoly = %+v, want %+v", box, want)
	}
	if cx := box.CenterX(); math.Abs(cx-0.3) > 1e-9 {
		t.Errorf("CenterX = %v, want 0.3", cx)
	}
}

func TestBoxFromPolyRawFallback(t *testing.T) {
	// Raw pixel vertices are scaled by the observed max coordinate.
	poly := &BoundingPoly{
		Vertices: []Vertex{{100, 50}, {200, 50}, {200, 100}, {100, 100}},
	}
	box := BoxFromPoly(poly)
	want := Box{0.5, 0.5, 1.0, 1.0}
	if box != want {
		t.Errorf("BoxFromPoly = %+v, want %+v", box, want)
	}
}

func TestBoxFromPolyEmpty(t *testing.T) {
	for _, poly := range []*BoundingPoly{nil, {}} {
		box := BoxFromPoly(poly)
		if !box.IsEmpty() {
			t.Errorf("BoxFromPoly(%v) = %+v, want empty", poly, box)
		}
	}
}

func TestUnionAbsorbsEmpty(t *testing.T) {
	real := Box{0.1, 0.1, 0.4, 0.3}
	if got := real.Union(EmptyBox()); got != real {
		t.Errorf("Union with empty = %+v, want %+v", got, real)
	}
	if got := EmptyBox().Union(real); got != real {
		t.Errorf("empty Union real = %+v, want %+v", got, real)
	}
	if !EmptyBox().Union(EmptyBox()).IsEmpty() {
		t.Error("union of two empty boxes should stay empty")
	}
}

func TestUnionCovers(t *testing.T) {
	a := Box{0.1, 0.1, 0.3, 0.3}
	b := Box{0.2, 0.05, 0.6, 0.2}
	got := a.Union(b)
	want := Box{0.1, 0.05, 0.6, 0.3}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}
