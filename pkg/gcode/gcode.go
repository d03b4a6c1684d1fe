// Package gcode renders a motion event sequence as G-code text. It is a
// literal serializer: feed rates, laser control codes and the prologue and
// epilogue snippets are spliced in verbatim, never interpreted.
package gcode

import (
	"fmt"
	"io"
	"strings"

	"pcblaser/pkg/plan"
)

// Laser control codes for Marlin-style controllers driving the laser
// through the fan output.
const (
	DefaultLaserOn  = "M106 S1"
	DefaultLaserOff = "M107"
)

const DefaultHeader = `M107 ; disable FAN
M106 L1 S0 ; switch FAN from PWM to On/Off mode (require Marlin code change)
M107       ; disable Laser
G90        ; use absolute positioning
G21        ; use mm
G92 X0     ; set current X position as 0
G92 Y0     ; set current Y position as 0
`

const DefaultFooter = `M107 ; disable laser
M106 L0 S0 ; switch FAN from On/Off to PWM mode (require Marlin code change)
M107       ; disable FAN
G0 X0 Y0   ; go to initial home X and Y
M84        ; disable steppers
M0         ; unconditional stop of printer
`

// Options carries everything the serializer needs beyond the events.
// Empty strings select the defaults above.
type Options struct {
	TravelFeed  int // mm/min for rapid moves
	EngraveFeed int // mm/min for engrave moves
	LaserOn     string
	LaserOff    string
	Header      string
	Footer      string
}

func (o *Options) fill() {
	if o.TravelFeed == 0 {
		o.TravelFeed = 1500
	}
	if o.EngraveFeed == 0 {
		o.EngraveFeed = 900
	}
	if o.LaserOn == "" {
		o.LaserOn = DefaultLaserOn
	}
	if o.LaserOff == "" {
		o.LaserOff = DefaultLaserOff
	}
	if o.Header == "" {
		o.Header = DefaultHeader
	}
	if o.Footer == "" {
		o.Footer = DefaultFooter
	}
}

// Write serializes the program to w: header, one line per event, footer.
func Write(w io.Writer, events []plan.Event, opts Options) error {
	opts.fill()
	var sb strings.Builder
	sb.WriteString(opts.Header)
	for _, e := range events {
		switch e.Op {
		case plan.OpRapid:
			fmt.Fprintf(&sb, "G0 X%.2f Y%.2f F%d\n", e.To.X, e.To.Y, opts.TravelFeed)
		case plan.OpEngrave:
			fmt.Fprintf(&sb, "G1 X%.2f Y%.2f F%d\n", e.To.X, e.To.Y, opts.EngraveFeed)
		case plan.OpLaserOn:
			sb.WriteString(opts.LaserOn + "\n")
		case plan.OpLaserOff:
			sb.WriteString(opts.LaserOff + "\n")
		case plan.OpDwell:
			fmt.Fprintf(&sb, "G4 P%d\n", e.Dwell.Milliseconds())
		default:
			return fmt.Errorf("gcode: unknown event op %d", e.Op)
		}
	}
	sb.WriteString(opts.Footer)
	_, err := io.WriteString(w, sb.String())
	return err
}
