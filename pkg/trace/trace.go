// Package trace vectorizes a binarized board image into closed polygon
// contours, in pixel coordinates. Tracing is delegated to the pure-Go
// potrace port; its curve output is flattened to line segments here, since
// the toolpath pipeline works on polygons only.
package trace

import (
	"image"
	"image/color"

	"github.com/dennwc/gotrace"

	"pcblaser/pkg/geom"
)

// Contours traces every shape whose pixels are darker than threshold and
// returns one polygon per closed boundary, holes included. No parent
// relation is reported; nesting is reconstructed downstream by
// containment, which is deterministic regardless of tracer version.
func Contours(g *image.Gray, threshold uint8) ([]geom.Contour, error) {
	bm := gotrace.NewBitmapFromImage(g, func(x, y int, _ color.Color) bool {
		return g.GrayAt(g.Bounds().Min.X+x, g.Bounds().Min.Y+y).Y < threshold
	})
	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return nil, err
	}
	var out []geom.Contour
	collect(paths, &out)
	return out, nil
}

// collect flattens paths depth first. Depending on tracer parameters the
// hole paths arrive either as siblings or as children, so both are walked.
func collect(paths []gotrace.Path, out *[]geom.Contour) {
	for _, p := range paths {
		if c := flatten(p); len(c) >= 3 {
			*out = append(*out, c)
		}
		collect(p.Childs, out)
	}
}

// flatten converts a traced curve to a polygon. Each segment ends at
// Pnt[2]; the path is closed, so the final segment's end point doubles as
// the start.
func flatten(p gotrace.Path) geom.Contour {
	if len(p.Curve) == 0 {
		return nil
	}
	last := p.Curve[len(p.Curve)-1]
	cur := geom.Pt(last.Pnt[2].X, last.Pnt[2].Y)
	c := geom.Contour{cur}
	for _, seg := range p.Curve {
		end := geom.Pt(seg.Pnt[2].X, seg.Pnt[2].Y)
		switch seg.Type {
		case gotrace.TypeCorner:
			c = append(c, geom.Pt(seg.Pnt[1].X, seg.Pnt[1].Y), end)
		case gotrace.TypeBezier:
			c = appendCubic(c, cur,
				geom.Pt(seg.Pnt[0].X, seg.Pnt[0].Y),
				geom.Pt(seg.Pnt[1].X, seg.Pnt[1].Y),
				end)
		}
		cur = end
	}
	// The walk re-appends the start as the final end point.
	if len(c) > 1 && c[len(c)-1] == c[0] {
		c = c[:len(c)-1]
	}
	return c
}
