package layout

import "math"

// Box is an axis-aligned bounding box in normalized page coordinates,
// X1 <= X2 and Y1 <= Y2, each in [0, 1] for elements with real geometry.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// EmptyBox returns the sentinel box that is absorbed as a no-op by Union
// and never contributes to bounding computations.
func EmptyBox() Box {
	return Box{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

// IsEmpty reports whether the box carries no real geometry.
func (b Box) IsEmpty() bool { return b.X1 > b.X2 || b.Y1 > b.Y2 }

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X1: math.Min(b.X1, o.X1),
		Y1: math.Min(b.Y1, o.Y1),
		X2: math.Max(b.X2, o.X2),
		Y2: math.Max(b.Y2, o.Y2),
	}
}

// CenterX returns the horizontal midpoint of the box.
func (b Box) CenterX() float64 { return (b.X1 + b.X2) / 2 }

// CenterY returns the vertical midpoint of the box.
func (b Box) CenterY() float64 { return (b.Y1 + b.Y2) / 2 }

// BoxFromPoly computes a normalized bounding box from a bounding polygon.
// Normalized vertices are preferred; raw vertices are scaled by the
// observed max coordinate as a degenerate fallback when no true page
// dimensions are known. A nil or vertex-less polygon yields EmptyBox.
func BoxFromPoly(poly *BoundingPoly) Box {
	if poly == nil {
		return EmptyBox()
	}

	pts := poly.NormalizedVertices
	if len(pts) == 0 && len(poly.Vertices) > 0 {
		maxX, maxY := 0.0, 0.0
		for _, v := range poly.Vertices {
			maxX = math.Max(maxX, v.X)
			maxY = math.Max(maxY, v.Y)
		}
		if maxX == 0 {
			maxX = 1
		}
		if maxY == 0 {
			maxY = 1
		}
		pts = make([]Vertex, len(poly.Vertices))
		for i, v := range poly.Vertices {
			pts[i] = Vertex{X: v.X / maxX, Y: v.Y / maxY}
		}
	}
	if len(pts) == 0 {
		return EmptyBox()
	}

	box := EmptyBox()
	for _, p := range pts {
		box.X1 = math.Min(box.X1, p.X)
		box.Y1 = math.Min(box.Y1, p.Y)
		box.X2 = math.Max(box.X2, p.X)
		box.Y2 = math.Max(box.Y2, p.Y)
	}
	return box
}
