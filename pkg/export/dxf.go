package export

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/pattern"
)

// polylines flattens the laid out panels of s into straight segments in
// sheet coordinates, within tolerance of the true outline.
func polylines(s *pattern.Spec, margin, tolerance float64) ([][2]curve.Point, error) {
	sh, err := layout(s, margin)
	if err != nil {
		return nil, err
	}
	var segs [][2]curve.Point
	for _, p := range sh.panels {
		path := p.outline.Path(tolerance).Transform(p.toSheet)
		var start, cur curve.Point
		for el := range path.Flatten(tolerance) {
			switch el.Kind {
			case curve.MoveToKind:
				start, cur = el.P0, el.P0
			case curve.LineToKind:
				segs = append(segs, [2]curve.Point{cur, el.P0})
				cur = el.P0
			case curve.ClosePathKind:
				if cur != start {
					segs = append(segs, [2]curve.Point{cur, start})
				}
				cur = start
			}
		}
	}
	return segs, nil
}

// SaveDXF writes the flat panels of s to a DXF cut file at path, laid out
// like WriteSVG but y-up.
func SaveDXF(path string, s *pattern.Spec, margin, tolerance float64) error {
	segs, err := polylines(s, margin, tolerance)
	if err != nil {
		return fmt.Errorf("export dxf: %w", err)
	}
	d := render.NewDXF(path)
	for _, seg := range segs {
		d.Line(&sdf.Line2{
			v2.Vec{X: seg[0].X, Y: seg[0].Y},
			v2.Vec{X: seg[1].X, Y: seg[1].Y},
		})
	}
	if err := d.Save(); err != nil {
		return fmt.Errorf("export dxf: %w", err)
	}
	return nil
}
