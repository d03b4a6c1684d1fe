package plan

import (
	"time"

	"pcblaser/pkg/geom"
)

// Op tags a motion event. Rapid and engrave moves differ only by feed
// rate, which the serializer owns.
type Op int

const (
	OpRapid Op = iota
	OpEngrave
	OpLaserOn
	OpLaserOff
	OpDwell
)

func (o Op) String() string {
	switch o {
	case OpRapid:
		return "rapid"
	case OpEngrave:
		return "engrave"
	case OpLaserOn:
		return "laser-on"
	case OpLaserOff:
		return "laser-off"
	case OpDwell:
		return "dwell"
	}
	return "unknown"
}

// Event is one step of the motion program, the sole artifact the planners
// produce. To is set for moves, Dwell for OpDwell.
type Event struct {
	Op    Op
	To    geom.Point
	Dwell time.Duration
}

// State is the laser head state threaded through emission, replacing what
// a single-pass generator would keep in globals. Starting from an
// arbitrary position or laser state is valid.
type State struct {
	Pos     geom.Point
	LaserOn bool
}

// emitLoop brackets one closed perimeter with its own laser-on/off pair:
// rapid to the start, engrave once around, close back to the start, then
// extinguish and dwell out the laser-off lag.
func emitLoop(loop geom.Contour, lag time.Duration, st *State) []Event {
	var ev []Event
	if st.LaserOn {
		ev = append(ev, Event{Op: OpLaserOff}, Event{Op: OpDwell, Dwell: lag})
		st.LaserOn = false
	}
	ev = append(ev, Event{Op: OpRapid, To: loop[0]}, Event{Op: OpLaserOn})
	for _, p := range loop[1:] {
		ev = append(ev, Event{Op: OpEngrave, To: p})
	}
	ev = append(ev,
		Event{Op: OpEngrave, To: loop[0]},
		Event{Op: OpLaserOff},
		Event{Op: OpDwell, Dwell: lag},
	)
	st.Pos = loop[0]
	return ev
}

// emitSegment engraves one horizontal raster interval.
func emitSegment(s Segment, lag time.Duration, st *State) []Event {
	var ev []Event
	if st.LaserOn {
		ev = append(ev, Event{Op: OpLaserOff}, Event{Op: OpDwell, Dwell: lag})
	}
	from, to := geom.Pt(s.X0, s.Y), geom.Pt(s.X1, s.Y)
	ev = append(ev,
		Event{Op: OpRapid, To: from},
		Event{Op: OpLaserOn},
		Event{Op: OpEngrave, To: to},
		Event{Op: OpLaserOff},
		Event{Op: OpDwell, Dwell: lag},
	)
	st.Pos = to
	st.LaserOn = false
	return ev
}
