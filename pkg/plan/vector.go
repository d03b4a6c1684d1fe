package plan

import (
	"time"

	"pcblaser/pkg/geom"
	"pcblaser/pkg/offset"
	"pcblaser/pkg/shape"
)

// Vector orders the offset loops for contour-following engraving and
// emits the motion program. Each loop is walked around its perimeter
// exactly once in its given orientation, starting at its first point,
// inside a dedicated laser-on/off bracket.
//
// Loop order is greedy: from the current head position, the unvisited
// loop with the nearest start point goes next, compared by squared
// distance. Ties fall back to forest preorder, keeping an outer shape
// just before its own descendants.
func Vector(f *shape.Forest, offs *offset.Result, st *State, lag time.Duration) []Event {
	var cands []geom.Contour
	f.Walk(func(i int, n *shape.Node) {
		for _, l := range offs.Nodes[i] {
			if len(l) >= 3 {
				cands = append(cands, l)
			}
		}
	})

	var events []Event
	for len(cands) > 0 {
		// cands stays in preorder, so strict less keeps the earlier loop
		// on equal distance.
		best := 0
		bestD := st.Pos.Dist2(cands[0][0])
		for i, c := range cands[1:] {
			if d := st.Pos.Dist2(c[0]); d < bestD {
				best, bestD = i+1, d
			}
		}
		events = append(events, emitLoop(cands[best], lag, st)...)
		cands = append(cands[:best], cands[best+1:]...)
	}
	return events
}
