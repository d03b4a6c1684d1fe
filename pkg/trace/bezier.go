package trace

import "pcblaser/pkg/geom"

// flatTolerance is in pixel units; a fifth of a pixel is invisible after
// the pixel-to-millimeter scale.
const flatTolerance = 0.2

// appendCubic approximates the cubic Bézier (p0,p1,p2,p3) with line
// segments by de Casteljau subdivision, appending every segment end to c.
//
// See "Piecewise Linear Approximation of Bézier Curves" by Kaspar Fischer,
// October 16, 2000.
func appendCubic(c geom.Contour, p0, p1, p2, p3 geom.Point) geom.Contour {
	if isFlat(p0, p1, p2, p3) {
		return append(c, p3)
	}
	l0, l1, l2, l3 := subdivide(0, .5, p0, p1, p2, p3)
	c = appendCubic(c, l0, l1, l2, l3)
	r0, r1, r2, r3 := subdivide(.5, 1, p0, p1, p2, p3)
	return appendCubic(c, r0, r1, r2, r3)
}

func subdivide(t0, t1 float64, p0, p1, p2, p3 geom.Point) (s0, s1, s2, s3 geom.Point) {
	u0 := 1 - t0
	u1 := 1 - t1
	blend := func(a, b, c, d float64, w0, w1, w2, w3 float64) float64 {
		return w0*a + w1*b + w2*c + w3*d
	}
	co := func(ta, tb, ua, ub float64) (w0, w1, w2, w3 float64) {
		return ua * ua * ub,
			ta*ua*ub + ua*ta*ub + ua*ua*tb,
			ta*ta*ub + ua*ta*tb + ta*ua*tb,
			ta * ta * tb
	}
	w := [4][4]float64{}
	w[0][0], w[0][1], w[0][2], w[0][3] = co(t0, t0, u0, u0)
	w[1][0], w[1][1], w[1][2], w[1][3] = co(t0, t1, u0, u1)
	w[2][0], w[2][1], w[2][2], w[2][3] = co(t1, t0, u1, u0)
	w[3][0], w[3][1], w[3][2], w[3][3] = co(t1, t1, u1, u1)
	pt := func(i int) geom.Point {
		return geom.Pt(
			blend(p0.X, p1.X, p2.X, p3.X, w[i][0], w[i][1], w[i][2], w[i][3]),
			blend(p0.Y, p1.Y, p2.Y, p3.Y, w[i][0], w[i][1], w[i][2], w[i][3]),
		)
	}
	return pt(0), pt(1), pt(2), pt(3)
}

func isFlat(p0, p1, p2, p3 geom.Point) bool {
	ux := 3*p1.X - 2*p0.X - p3.X
	uy := 3*p1.Y - 2*p0.Y - p3.Y
	vx := 3*p2.X - 2*p3.X - p0.X
	vy := 3*p2.Y - 2*p3.Y - p0.Y
	ux *= ux
	uy *= uy
	vx *= vx
	vy *= vy
	if ux < vx {
		ux = vx
	}
	if uy < vy {
		uy = vy
	}
	return ux+uy <= 16*flatTolerance*flatTolerance
}
