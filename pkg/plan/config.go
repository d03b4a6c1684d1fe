package plan

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects the toolpath strategy.
type Mode string

const (
	// ModeVector traces each shape perimeter as a closed loop.
	ModeVector = Mode("vector")
	// ModeLinear scans horizontal lines across the whole image.
	ModeLinear = Mode("linear")
)

var (
	ErrUnsupportedMode = errors.New("unsupported mode")
	ErrBadConfig       = errors.New("invalid configuration")
)

// Config is the immutable input to toolpath generation. Feed rates and
// the header/footer snippets are opaque here and only interpreted by the
// G-code serializer.
type Config struct {
	ImageWidthMM  float64
	ImageHeightMM float64
	LaserDiameter float64 // laser spot size, mm
	Mode          Mode
	LaserOffLag   time.Duration // dwell after switching the laser off

	TravelFeed  int
	EngraveFeed int
	Header      string
	Footer      string
}

// Validate rejects configurations no geometry work should start under.
func (c Config) Validate() error {
	if c.LaserDiameter <= 0 {
		return fmt.Errorf("%w: laser diameter %g mm", ErrBadConfig, c.LaserDiameter)
	}
	if c.ImageWidthMM <= 0 || c.ImageHeightMM <= 0 {
		return fmt.Errorf("%w: image size %g x %g mm", ErrBadConfig, c.ImageWidthMM, c.ImageHeightMM)
	}
	if c.Mode != ModeVector && c.Mode != ModeLinear {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, c.Mode)
	}
	return nil
}

// Tolerance is the coincident-point threshold: points closer than 1% of
// the laser diameter merge, avoiding micro-segment artifacts.
func (c Config) Tolerance() float64 {
	return c.LaserDiameter * 0.01
}
