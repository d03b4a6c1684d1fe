package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcblaser/pkg/geom"
	"pcblaser/pkg/offset"
	"pcblaser/pkg/shape"
)

func square(x0, y0, side float64) geom.Contour {
	return geom.Contour{
		geom.Pt(x0, y0),
		geom.Pt(x0+side, y0),
		geom.Pt(x0+side, y0+side),
		geom.Pt(x0, y0+side),
	}
}

func testConfig(mode Mode) Config {
	return Config{
		ImageWidthMM:  100,
		ImageHeightMM: 100,
		LaserDiameter: 0.1,
		Mode:          mode,
		LaserOffLag:   100 * time.Millisecond,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig(ModeVector).Validate())
	assert.NoError(t, testConfig(ModeLinear).Validate())

	c := testConfig(ModeVector)
	c.LaserDiameter = 0
	assert.ErrorIs(t, c.Validate(), ErrBadConfig)

	c = testConfig(ModeVector)
	c.ImageHeightMM = -5
	assert.ErrorIs(t, c.Validate(), ErrBadConfig)

	c = testConfig("spiral")
	assert.ErrorIs(t, c.Validate(), ErrUnsupportedMode)
}

// loopBrackets splits the event stream into laser-on..laser-off brackets
// and fails on any engrave move outside a bracket.
func loopBrackets(t *testing.T, events []Event) [][]Event {
	t.Helper()
	var brackets [][]Event
	var cur []Event
	on := false
	for _, e := range events {
		switch e.Op {
		case OpLaserOn:
			require.False(t, on, "laser turned on twice")
			on = true
			cur = nil
		case OpLaserOff:
			require.True(t, on, "laser turned off while off")
			on = false
			brackets = append(brackets, cur)
		case OpEngrave:
			require.True(t, on, "engrave move with laser off")
			cur = append(cur, e)
		case OpRapid:
			require.False(t, on, "rapid move with laser on")
		}
	}
	require.False(t, on, "laser left on at end of program")
	return brackets
}

func TestVectorBracketsAndPerimeter(t *testing.T) {
	contours := []geom.Contour{
		square(25, 25, 50),
		square(40, 40, 20),
	}
	f, warns := shape.Build(contours, []int{shape.NoParent, 0})
	require.Empty(t, warns)
	offs := offset.Forest(f, 0.1)

	st := &State{}
	events := Vector(f, offs, st, 100*time.Millisecond)

	brackets := loopBrackets(t, events)
	require.Len(t, brackets, 2, "one laser bracket per non-empty offset contour")

	// Every engrave move must land on a vertex of one of the offset loops.
	onLoop := map[geom.Point]bool{}
	for _, node := range offs.Nodes {
		for _, loop := range node {
			for _, p := range loop {
				onLoop[p] = true
			}
		}
	}
	for _, b := range brackets {
		for _, e := range b {
			assert.True(t, onLoop[e.To], "engrave move to %v is off every contour", e.To)
		}
	}
}

func TestVectorEndToEnd(t *testing.T) {
	// 100x100mm image, 50mm outer square with a centered 20mm hole:
	// two loops, outer inset to 25.05 and hole outset to 39.95, the loop
	// starting nearer the origin engraved first.
	contours := []geom.Contour{
		square(25, 25, 50),
		square(40, 40, 20),
	}
	f, _ := shape.Build(contours, nil)
	offs := offset.Forest(f, 0.1)

	outerMin, outerMax := offs.Nodes[0][0].Bounds()
	assert.InDelta(t, 25.05, outerMin.X, 1e-9)
	assert.InDelta(t, 74.95, outerMax.X, 1e-9)
	holeMin, holeMax := offs.Nodes[1][0].Bounds()
	assert.InDelta(t, 39.95, holeMin.X, 1e-9)
	assert.InDelta(t, 60.05, holeMax.X, 1e-9)

	st := &State{} // head at origin, laser off
	events := Vector(f, offs, st, 100*time.Millisecond)

	require.Equal(t, OpRapid, events[0].Op)
	assert.InDelta(t, 25.05, events[0].To.X, 1e-9, "outer loop starts nearer the origin")
	assert.InDelta(t, 25.05, events[0].To.Y, 1e-9)

	var rapids []geom.Point
	for _, e := range events {
		if e.Op == OpRapid {
			rapids = append(rapids, e.To)
		}
	}
	require.Len(t, rapids, 2)
	assert.InDelta(t, 39.95, rapids[1].X, 1e-9)
	assert.InDelta(t, 39.95, rapids[1].Y, 1e-9)
}

func TestVectorGreedyPicksNearestStart(t *testing.T) {
	// Two disjoint shapes; the head ends the first loop nearest to the
	// later shape's start, so input order must not win.
	contours := []geom.Contour{
		square(90, 0, 5),
		square(0, 0, 5),
	}
	f, _ := shape.Build(contours, nil)
	offs := offset.Forest(f, 0.1)

	st := &State{Pos: geom.Pt(1, 1)}
	events := Vector(f, offs, st, time.Millisecond)
	require.Equal(t, OpRapid, events[0].Op)
	assert.InDelta(t, 0.05, events[0].To.X, 1e-9, "nearest start goes first despite input order")
}

func TestEmitLoopThreadsState(t *testing.T) {
	loop := square(0, 0, 10)
	st := &State{Pos: geom.Pt(50, 50), LaserOn: true}
	ev := emitLoop(loop, 100*time.Millisecond, st)

	// A lit laser is extinguished, and allowed to lag out, before the
	// rapid to the new loop.
	require.Equal(t, OpLaserOff, ev[0].Op)
	require.Equal(t, OpDwell, ev[1].Op)
	assert.Equal(t, 100*time.Millisecond, ev[1].Dwell)
	assert.Equal(t, OpRapid, ev[2].Op)

	assert.Equal(t, OpDwell, ev[len(ev)-1].Op)
	assert.Equal(t, OpLaserOff, ev[len(ev)-2].Op)
	assert.Equal(t, loop[0], ev[len(ev)-3].To, "loop closes back to its start")

	assert.False(t, st.LaserOn)
	assert.Equal(t, loop[0], st.Pos)
}

func TestLinearSquareScanlines(t *testing.T) {
	// 10mm square, 0.1mm laser: exactly 100 scan lines, one interval
	// each, spanning the full inset width.
	f, _ := shape.Build([]geom.Contour{square(0, 0, 10)}, nil)
	offs := offset.Forest(f, 0.1)

	st := &State{}
	events := Linear(offs, 10, 0.1, 0.001, st, 100*time.Millisecond)

	brackets := loopBrackets(t, events)
	require.Len(t, brackets, 100)
	for _, b := range brackets {
		require.Len(t, b, 1, "exactly one engrave interval per line")
		assert.InDelta(t, 9.95, b[0].To.X, 1e-6, "interval spans to the inset right edge")
	}

	// Fixed start side: every rapid goes to the low-X end.
	for _, e := range events {
		if e.Op == OpRapid {
			assert.InDelta(t, 0.05, e.To.X, 1e-6)
		}
	}
}

func TestLinearHoleSplitsIntervals(t *testing.T) {
	contours := []geom.Contour{
		square(0, 0, 30),
		square(10, 10, 10),
	}
	f, _ := shape.Build(contours, nil)
	offs := offset.Forest(f, 0.1)

	st := &State{}
	events := Linear(offs, 30, 0.1, 0.001, st, time.Millisecond)

	// A line through the middle must split around the hole.
	var mid []Segment
	for i, e := range events {
		if e.Op == OpEngrave && e.To.Y > 15.0 && e.To.Y < 15.1 {
			mid = append(mid, Segment{Y: e.To.Y, X0: events[i-2].To.X, X1: e.To.X})
		}
	}
	require.Len(t, mid, 2)
	assert.Less(t, mid[0].X1, 10.0)
	assert.Greater(t, mid[1].X0, 20.0)
}

func TestScanlineDropsThinIntervals(t *testing.T) {
	// Interval narrower than the tolerance disappears: the documented
	// thin-feature limitation.
	sliver := geom.Contour{
		geom.Pt(0, 0),
		geom.Pt(0.0005, 0),
		geom.Pt(0.0005, 10),
		geom.Pt(0, 10),
	}
	assert.Empty(t, scanline([]geom.Contour{sliver}, 5, 0.001))
}

func TestScanlineVertexGraze(t *testing.T) {
	// A line exactly on the geometry's top edge still produces its
	// interval instead of vanishing to parity loss.
	sq := square(0, 0.05, 9.9) // spans y in [0.05, 9.95]
	segs := scanline([]geom.Contour{sq}, 9.95, 0.001)
	require.Len(t, segs, 1)
	assert.InDelta(t, 9.9, segs[0].X1-segs[0].X0, 0.01)
}

func TestGenerate(t *testing.T) {
	f, _ := shape.Build([]geom.Contour{square(10, 10, 20)}, nil)
	offs := offset.Forest(f, 0.1)

	events, err := Generate(testConfig(ModeVector), f, offs)
	require.NoError(t, err)
	assert.NotEmpty(t, events)

	events, err = Generate(testConfig(ModeLinear), f, offs)
	require.NoError(t, err)
	assert.NotEmpty(t, events)

	_, err = Generate(testConfig("spiral"), f, offs)
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}
