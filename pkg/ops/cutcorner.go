package ops

import (
	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// minScale is the smallest accepted scale correction; below it the shape
// has collapsed onto the corner.
const minScale = 1e-3

// FitResult describes how a shape was placed into a corner.
type FitResult struct {
	Shift    curve.Vec2
	Scale    float64 // 1 unless the scale correction ran
	Residual float64
	// Scaled reports whether the translation alone could not fit the shape.
	Scaled bool
	// Run is the new boundary run: a connector from the first anchor, the
	// fitted shape, and a connector to the second anchor.
	Run edge.EdgeSequence
	// Interfaces holds one single-edge interface per edge of Run.
	Interfaces []*pattern.Interface
}

// CutCorner fits shape into the corner between p.Edges[eid1] and
// p.Edges[eid2] using the default tolerances.
func CutCorner(shape edge.EdgeSequence, p *pattern.Panel, eid1, eid2 int) (FitResult, error) {
	return defaultFitter.CutCorner(shape, p, eid1, eid2)
}

// CutCorner replaces the corner vertex shared by edges eid1 and eid2 with a
// copy of shape. The copy is translated so its endpoints lie on the two
// corner edges, and scaled about its start if translation alone leaves a
// residual above tolerance. The two corner edges are replaced by connector
// edges from their far vertices to the shape, with the shape between them;
// the panel loses two edges and gains len(shape)+2.
//
// Interfaces that viewed the first corner edge now view the first connector,
// those on the second edge the last connector, and a view over both corner
// edges covers the whole run. FitResult.Interfaces views each new edge on
// its own.
//
// The panel is unchanged when an error is returned.
func (f *Fitter) CutCorner(shape edge.EdgeSequence, p *pattern.Panel, eid1, eid2 int) (FitResult, error) {
	n := len(p.Edges)
	if eid1 < 0 || eid1 >= n || eid2 < 0 || eid2 >= n || eid1 == eid2 {
		return FitResult{}, &edge.ShapeError{Op: "cut corner", Message: "corner edge index out of range"}
	}
	e1, e2 := p.Edges[eid1], p.Edges[eid2]
	if eid2 != (eid1+1)%n || e1.End != e2.Start {
		return FitResult{}, &edge.ShapeError{Op: "cut corner", Message: "edges do not meet at a corner"}
	}
	if len(shape) == 0 || !shape.IsChained() {
		return FitResult{}, &edge.ShapeError{Op: "cut corner", Message: "shape is not a chained sequence"}
	}

	target := shape.Clone()
	vc := e1.End.Point()
	v1, v2 := e1.Start.Point(), e2.End.Point()
	// anchors are ordered bottom to top; ties keep the boundary order
	swapped := v1.Y > v2.Y
	if swapped {
		v1, v2 = v2, v1
	}
	if target.Start().Y > target.End().Y {
		target.Reverse()
	}

	fitErr := func(stage string, residual float64, cause error) error {
		return &FitError{Panel: p.Name(), Edges: [2]int{eid1, eid2}, Stage: stage, Residual: residual, Cause: cause}
	}

	sc0, sc1 := target.Start().Point(), target.End().Point()
	d1, d2 := v1.Distance(vc), v2.Distance(vc)
	// Each shape end must land on its corner edge: the detour from the
	// anchor through the shape end to the corner vanishes exactly there.
	onEdges := func(a, b curve.Point) float64 {
		r0 := d1 - a.Distance(v1) - a.Distance(vc)
		r1 := d2 - b.Distance(v2) - b.Distance(vc)
		return r0*r0 + r1*r1
	}

	tr := minimize(func(x []float64) float64 {
		s := curve.Vec(x[0], x[1])
		return onEdges(sc0.Translate(s), sc1.Translate(s))
	}, []float64{0, 0}, f.Tolerance.FitResidual)
	if !tr.converged {
		return FitResult{}, fitErr("translation", tr.f, tr.err)
	}

	res := FitResult{Shift: curve.Vec(tr.x[0], tr.x[1]), Scale: 1, Residual: tr.f}
	target.Shift(res.Shift)
	sc0, sc1 = sc0.Translate(res.Shift), sc1.Translate(res.Shift)

	if tr.f > f.Tolerance.FitResidual {
		pattern.Logger().Warn("corner fit needs scaling",
			"panel", p.Name(), "edges", []int{eid1, eid2}, "residual", tr.f)

		ends := func(x []float64) (curve.Point, curve.Point) {
			return sc0.Translate(sc0.Sub(sc1).Mul(x[0])), sc1.Translate(sc1.Sub(sc0).Mul(x[1]))
		}
		sr := minimize(func(x []float64) float64 {
			return onEdges(ends(x))
		}, []float64{0, 0}, f.Tolerance.FitResidual)
		if !sr.converged || sr.f > f.Tolerance.FitResidual {
			return FitResult{}, fitErr("scale", sr.f, sr.err)
		}
		a, b := ends(sr.x)
		chord := sc1.Sub(sc0).Hypot()
		if chord == 0 {
			return FitResult{}, fitErr("scale", sr.f, nil)
		}
		res.Scale = b.Sub(a).Hypot() / chord
		if res.Scale < minScale {
			return FitResult{}, fitErr("scale", sr.f, nil)
		}
		res.Residual = sr.f
		res.Scaled = true

		shift := a.Sub(sc0)
		target.Shift(shift)
		target.ScaleFromStart(res.Scale)
		res.Shift = res.Shift.Add(shift)
	}

	if swapped {
		target.Reverse()
	}

	run := make(edge.EdgeSequence, 0, len(target)+2)
	run = append(run, edge.New(e1.Start, target.Start()))
	run = append(run, target...)
	run = append(run, edge.New(target.End(), e2.End))
	res.Run = run

	spans := [][2]int{{0, 1}, {len(run) - 1, len(run)}}
	if err := p.ReplaceEdgesMapped(eid1, 2, run, spans); err != nil {
		return FitResult{}, err
	}
	for _, e := range run {
		res.Interfaces = append(res.Interfaces, pattern.NewInterface(p, e))
	}

	pattern.Logger().Debug("cut corner",
		"panel", p.Name(), "edges", []int{eid1, eid2},
		"shift", res.Shift, "scale", res.Scale, "residual", res.Residual)
	return res, nil
}
