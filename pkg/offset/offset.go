// Package offset shrinks and grows contours by half the laser spot
// diameter so the beam centerline never crosses the true material
// boundary. Outer boundaries move inward, hole boundaries move outward
// into the engraved region, flipping at every nesting level.
package offset

import (
	"math"

	"pcblaser/pkg/geom"
	"pcblaser/pkg/shape"
)

// Beyond this many miter lengths the join is beveled instead, so acute
// corners cannot spike across the shape.
const miterLimit = 4

// Contour offsets c by delta: delta > 0 shrinks the enclosed region,
// delta < 0 grows it. The result is zero or more simple contours; an empty
// result means the shape was narrower than twice the offset and has been
// fully consumed, which is an expected outcome, not an error.
//
// Points closer than tol are treated as coincident. Self-intersections
// introduced by the offset are resolved by splitting into simple loops and
// discarding the degenerate ones; for delta > 0 every surviving loop lies
// inside the original contour.
func Contour(c geom.Contour, delta, tol float64) []geom.Contour {
	c = c.Dedupe(tol)
	if len(c) < 3 {
		return nil
	}
	if delta == 0 {
		return []geom.Contour{c}
	}

	raw := offsetRaw(c, delta)
	loops := splitLoops(raw, tol)

	wantCW := c.SignedArea() > 0
	minArea := tol * tol
	var out []geom.Contour
	for _, l := range loops {
		l = l.Dedupe(tol)
		if len(l) < 3 {
			continue
		}
		sa := l.SignedArea()
		if math.Abs(sa) <= minArea {
			continue
		}
		// A collapsed region turns itself inside out; those loops have
		// reversed orientation and are dropped.
		if (sa > 0) != wantCW {
			continue
		}
		if delta > 0 && !containedIn(l, c) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Result holds the offset contours for every forest node, parallel to the
// arena. Dropped nodes and fully consumed shapes have empty slots.
type Result struct {
	Nodes [][]geom.Contour
}

// Forest offsets every node of f by half the laser diameter, inward at even
// depth and outward at odd depth. Nodes are independent: a collapse in one
// never affects siblings or children.
func Forest(f *shape.Forest, laserDiameter float64) *Result {
	tol := laserDiameter * 0.01
	res := &Result{Nodes: make([][]geom.Contour, len(f.Nodes))}
	f.Walk(func(i int, n *shape.Node) {
		d := laserDiameter / 2
		if n.Hole() {
			d = -d
		}
		res.Nodes[i] = Contour(n.Contour, d, tol)
	})
	return res
}

// offsetRaw moves every edge toward the interior by delta and joins
// adjacent offset edges at their line intersection (miter), falling back
// to a bevel when the edges are near parallel or the miter would spike.
func offsetRaw(c geom.Contour, delta float64) geom.Contour {
	sign := 1.0
	if c.SignedArea() < 0 {
		sign = -1
	}
	n := len(c)
	out := make(geom.Contour, 0, n)
	for i := 0; i < n; i++ {
		prev, cur, next := c[(i-1+n)%n], c[i], c[(i+1)%n]
		n1 := inwardNormal(prev, cur, sign)
		n2 := inwardNormal(cur, next, sign)
		a1, a2 := prev.Add(n1.Mul(delta)), cur.Add(n1.Mul(delta))
		b1, b2 := cur.Add(n2.Mul(delta)), next.Add(n2.Mul(delta))
		p, ok := lineIntersect(a1, a2, b1, b2)
		if ok && p.Dist2(cur) <= miterLimit*miterLimit*delta*delta {
			out = append(out, p)
		} else {
			out = append(out, a2, b1)
		}
	}
	return out
}

// inwardNormal returns the unit normal of edge p->q pointing into the
// polygon, given the orientation sign of its signed area.
func inwardNormal(p, q geom.Point, sign float64) geom.Point {
	d := q.Sub(p)
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return geom.Point{}
	}
	return geom.Pt(-d.Y/l, d.X/l).Mul(sign)
}

// lineIntersect intersects the infinite lines through (a1,a2) and (b1,b2).
func lineIntersect(a1, a2, b1, b2 geom.Point) (geom.Point, bool) {
	d1, d2 := a2.Sub(a1), b2.Sub(b1)
	den := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(den) < 1e-12 {
		return geom.Point{}, false
	}
	t := ((b1.X-a1.X)*d2.Y - (b1.Y-a1.Y)*d2.X) / den
	return a1.Add(d1.Mul(t)), true
}

// segIntersect reports a proper crossing of the open segments (a1,a2) and
// (b1,b2), excluding touches at their endpoints.
func segIntersect(a1, a2, b1, b2 geom.Point) (geom.Point, bool) {
	const eps = 1e-9
	d1, d2 := a2.Sub(a1), b2.Sub(b1)
	den := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(den) < 1e-12 {
		return geom.Point{}, false
	}
	t := ((b1.X-a1.X)*d2.Y - (b1.Y-a1.Y)*d2.X) / den
	u := ((b1.X-a1.X)*d1.Y - (b1.Y-a1.Y)*d1.X) / den
	if t <= eps || t >= 1-eps || u <= eps || u >= 1-eps {
		return geom.Point{}, false
	}
	return a1.Add(d1.Mul(t)), true
}

// splitLoops cuts a possibly self-crossing loop into simple loops at every
// proper edge crossing. The split budget bounds the work on pathological
// input; leftovers are returned uncut and weeded out by the caller's
// orientation and containment filters.
func splitLoops(c geom.Contour, tol float64) []geom.Contour {
	var out []geom.Contour
	work := []geom.Contour{c}
	budget := len(c)
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		i, j, p, found := firstCrossing(cur)
		if !found || budget <= 0 {
			out = append(out, cur)
			continue
		}
		budget--
		l1 := append(geom.Contour{p}, cur[i+1:j+1]...)
		l2 := append(geom.Contour{p}, cur[j+1:]...)
		l2 = append(l2, cur[:i+1]...)
		work = append(work, l1, l2)
	}
	return out
}

func firstCrossing(c geom.Contour) (i, j int, at geom.Point, found bool) {
	n := len(c)
	for i = 0; i < n; i++ {
		for j = i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			p, ok := segIntersect(c[i], c[(i+1)%n], c[j], c[(j+1)%n])
			if ok {
				return i, j, p, true
			}
		}
	}
	return 0, 0, geom.Point{}, false
}

// containedIn reports whether every vertex of l lies inside c. Inset loops
// sit a positive distance from the original boundary, so vertex tests
// suffice.
func containedIn(l, c geom.Contour) bool {
	for _, p := range l {
		if !c.Contains(p) {
			return false
		}
	}
	return true
}
