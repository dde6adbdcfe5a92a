package export

import (
	"math"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// sheet is a set of flat panel outlines laid out in a row, left to right
// in assembly order, separated by a margin. Coordinates are y-up.
type sheet struct {
	panels []laidOut
	bounds curve.Rect
}

type laidOut struct {
	name    string
	outline edge.EdgeSequence
	// toSheet maps panel-local coordinates onto the sheet.
	toSheet curve.Affine
}

func layout(s *pattern.Spec, margin float64) (sheet, error) {
	var sh sheet
	x, height := margin, 0.0
	for _, ps := range s.Panels {
		out, err := Outline(ps)
		if err != nil {
			return sheet{}, err
		}
		box := out.BoundingBox()
		sh.panels = append(sh.panels, laidOut{
			name:    ps.Name,
			outline: out,
			toSheet: curve.Translate(curve.Vec(x-box.X0, margin-box.Y0)),
		})
		x += box.Width() + margin
		height = math.Max(height, box.Height())
	}
	sh.bounds = curve.Rect{X0: 0, Y0: 0, X1: math.Max(x, 2*margin), Y1: height + 2*margin}
	return sh, nil
}

func (sh sheet) panel(name string) (laidOut, bool) {
	for _, p := range sh.panels {
		if p.name == name {
			return p, true
		}
	}
	return laidOut{}, false
}
