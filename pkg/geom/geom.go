// Package geom provides the 2D primitives the toolpath pipeline is built
// on: points, closed polygonal contours, signed area and orientation, and
// even-odd containment. Coordinates are in millimeters after scaling, or
// image pixels before. Y increases downwards, matching image conventions.
package geom

import "math"

// Point is an immutable 2D coordinate.
type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dist2 is the squared euclidean distance to q. Travel ordering only
// compares distances, so the square root is never taken.
func (p Point) Dist2(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Contour is a closed polygon given as an ordered point sequence. The edge
// from the last point back to the first is implicit; there is no repeated
// closing point. Orientation carries meaning and is derived from the
// signed area.
type Contour []Point

// SignedArea computes the shoelace sum. With Y growing downwards a
// positive value means clockwise on screen.
func (c Contour) SignedArea() float64 {
	if len(c) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Area is the absolute enclosed area.
func (c Contour) Area() float64 {
	return math.Abs(c.SignedArea())
}

// Contains reports whether p is inside the contour under the even-odd
// rule. Points exactly on the boundary may land on either side; callers
// that care use a tolerance before asking.
func (c Contour) Contains(p Point) bool {
	inside := false
	n := len(c)
	for i := 0; i < n; i++ {
		a, b := c[i], c[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Bounds returns the min and max corners of the bounding box.
func (c Contour) Bounds() (min, max Point) {
	min = Point{math.Inf(1), math.Inf(1)}
	max = Point{math.Inf(-1), math.Inf(-1)}
	for _, p := range c {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Dedupe drops points closer than tol to their predecessor, including the
// wrap-around from last to first. The upstream vectorizer emits duplicate
// and near-duplicate points; merging them here avoids micro-segment
// artifacts downstream.
func (c Contour) Dedupe(tol float64) Contour {
	if len(c) == 0 {
		return nil
	}
	tol2 := tol * tol
	out := Contour{c[0]}
	for _, p := range c[1:] {
		if p.Dist2(out[len(out)-1]) > tol2 {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[len(out)-1].Dist2(out[0]) <= tol2 {
		out = out[:len(out)-1]
	}
	return out
}

// Scale returns a copy with every coordinate multiplied by s, used for the
// pixel to millimeter conversion.
func (c Contour) Scale(s float64) Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[i] = p.Mul(s)
	}
	return out
}
