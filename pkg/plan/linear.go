package plan

import (
	"math"
	"sort"
	"time"

	"pcblaser/pkg/geom"
	"pcblaser/pkg/offset"
)

// Segment is one horizontal engrave interval of a raster scan line.
type Segment struct {
	Y, X0, X1 float64
}

// Linear decomposes the offset geometry into horizontal scan lines at a
// vertical pitch of one laser diameter, covering the full image height.
// Hole handling needs no hierarchy here: holes were already carved by the
// depth-parity offsets, so the even-odd crossing rule over all offset
// contours gives the engrave intervals directly.
//
// Every line is engraved left to right from the low-X side. Scanning is
// deliberately not boustrophedon: alternating would shorten travel but
// has no effect on the engraved result, and a fixed side keeps the output
// deterministic.
//
// Intervals narrower than tol are dropped. This is the documented
// disappearance of features no wider than the laser spot, kept as-is.
func Linear(offs *offset.Result, heightMM, pitch, tol float64, st *State, lag time.Duration) []Event {
	var contours []geom.Contour
	for _, node := range offs.Nodes {
		contours = append(contours, node...)
	}

	var events []Event
	for y := pitch / 2; y < heightMM; y += pitch {
		for _, s := range scanline(contours, y, tol) {
			events = append(events, emitSegment(s, lag, st)...)
		}
	}
	return events
}

// scanline computes engrave intervals on the horizontal line at y by the
// even-odd parity of edge crossings across all contours.
func scanline(contours []geom.Contour, y, tol float64) []Segment {
	ys := sampleY(contours, y, tol)
	var xs []float64
	for _, c := range contours {
		n := len(c)
		for i := 0; i < n; i++ {
			a, b := c[i], c[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			// Half-open in Y so a crossing at a shared vertex counts once.
			if (a.Y > ys) == (b.Y > ys) {
				continue
			}
			xs = append(xs, a.X+(ys-a.Y)/(b.Y-a.Y)*(b.X-a.X))
		}
	}
	if len(xs) < 2 {
		return nil
	}
	sort.Float64s(xs)

	var segs []Segment
	for i := 0; i+1 < len(xs); i += 2 {
		if xs[i+1]-xs[i] < tol {
			continue
		}
		segs = append(segs, Segment{Y: y, X0: xs[i], X1: xs[i+1]})
	}
	return segs
}

// sampleY nudges the sample line off any vertex it grazes: crossing parity
// is undefined exactly on a vertex or horizontal edge. The nudge points
// into the geometry's vertical extent so boundary rows are not lost, and
// stays within the coincident-point tolerance.
func sampleY(contours []geom.Contour, y, tol float64) float64 {
	grazes := false
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, c := range contours {
		for _, p := range c {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
			if math.Abs(p.Y-y) < tol/2 {
				grazes = true
			}
		}
	}
	if !grazes {
		return y
	}
	if y >= (minY+maxY)/2 {
		return y - tol/2
	}
	return y + tol/2
}
