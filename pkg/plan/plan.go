// Package plan turns offset contour geometry into an ordered motion
// program: typed rapid/engrave moves with laser on/off bracketing and the
// laser-off dwell, in either contour-following (vector) or raster-scan
// (linear) order.
package plan

import (
	"pcblaser/pkg/offset"
	"pcblaser/pkg/shape"
)

// Generate runs the planner selected by cfg.Mode over the offset forest.
// The head starts at the machine origin with the laser off.
func Generate(cfg Config, f *shape.Forest, offs *offset.Result) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st := &State{}
	switch cfg.Mode {
	case ModeVector:
		return Vector(f, offs, st, cfg.LaserOffLag), nil
	case ModeLinear:
		return Linear(offs, cfg.ImageHeightMM, cfg.LaserDiameter, cfg.Tolerance(), st, cfg.LaserOffLag), nil
	}
	// Unreachable after Validate, but keep the error path explicit.
	return nil, ErrUnsupportedMode
}
