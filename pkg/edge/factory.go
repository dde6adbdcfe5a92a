package edge

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/geom"
)

// FromVerts chains straight edges through the given points.
func FromVerts(pts ...curve.Point) EdgeSequence {
	if len(pts) < 2 {
		return nil
	}
	verts := make([]*geom.Vertex, len(pts))
	for i, p := range pts {
		verts[i] = geom.FromPoint(p)
	}
	out := make(EdgeSequence, len(pts)-1)
	for i := range out {
		out[i] = New(verts[i], verts[i+1])
	}
	return out
}

// Loop chains straight edges through the points and closes the outline
// back to the first one.
func Loop(pts ...curve.Point) EdgeSequence {
	s := FromVerts(pts...)
	if len(s) == 0 {
		return s
	}
	return append(s, New(s.End(), s.Start()))
}

// SimpleLoop is a closed outline starting at the origin and visiting pts.
func SimpleLoop(pts ...curve.Point) EdgeSequence {
	return Loop(append([]curve.Point{curve.Pt(0, 0)}, pts...)...)
}

// Join concatenates copies of the chained sequences and welds every seam,
// the closing one included, so that consecutive edges share one vertex.
func Join(seqs ...EdgeSequence) (EdgeSequence, error) {
	var out EdgeSequence
	for i, s := range seqs {
		if len(s) == 0 {
			continue
		}
		c := s.Clone()
		if len(out) > 0 {
			if !linked(out.End(), c.Start()) {
				return nil, shapeErrorf("join", "sequence %d starts at %v, previous ends at %v", i, c.Start(), out.End())
			}
			rebind(c, c.Start(), out.End())
		}
		out = append(out, c...)
	}
	if len(out) > 1 && out.End() != out.Start() && linked(out.End(), out.Start()) {
		rebind(out, out.End(), out.Start())
	}
	return out, nil
}

// SideWithCut returns the straight side start->end with optional lengths
// cut off at either end as separate edges. Non-positive cuts are skipped.
func SideWithCut(start, end curve.Point, startCut, endCut float64) EdgeSequence {
	d := end.Sub(start)
	l := d.Hypot()
	pts := []curve.Point{start}
	if startCut > 0 {
		pts = append(pts, start.Lerp(end, startCut/l))
	}
	if endCut > 0 {
		pts = append(pts, start.Lerp(end, 1-endCut/l))
	}
	pts = append(pts, end)
	return FromVerts(pts...)
}

// ---------------------------------------------------------------------------
// Arcs
// ---------------------------------------------------------------------------

// ArcFromPointsAngle returns the arc through start and end spanning angle
// radians (0 < angle < 2π). right selects the bulge side relative to the
// direction start->end.
func ArcFromPointsAngle(angle float64, right bool) (Arc, error) {
	if !(angle > 0 && angle < 2*math.Pi) {
		return Arc{}, shapeErrorf("circle", "arc angle %g outside (0, 2π)", angle)
	}
	if !right {
		angle = -angle
	}
	return ArcFromSweep(angle), nil
}

// ArcFromThreePoints returns the arc from start to end passing through mid.
func ArcFromThreePoints(start, end, mid curve.Point) (Arc, error) {
	c, err := circumcenter(start, end, mid)
	if err != nil {
		return Arc{}, err
	}
	rc := geom.AbsToRel(start, end, c)
	rm := geom.AbsToRel(start, end, mid)
	// mid on the same side of the chord as the center lies on the major arc
	large := rc.Y*rm.Y > 0
	return Arc{CenterY: rc.Y, LargeArc: large}, nil
}

func circumcenter(a, b, c curve.Point) (curve.Point, error) {
	m := mat.NewDense(2, 2, []float64{
		2 * (b.X - a.X), 2 * (b.Y - a.Y),
		2 * (c.X - a.X), 2 * (c.Y - a.Y),
	})
	rhs := mat.NewVecDense(2, []float64{
		b.X*b.X + b.Y*b.Y - a.X*a.X - a.Y*a.Y,
		c.X*c.X + c.Y*c.Y - a.X*a.X - a.Y*a.Y,
	})
	if math.Abs(mat.Det(m)) < 1e-12 {
		return curve.Point{}, shapeErrorf("circle", "points %v %v %v are collinear", a, b, c)
	}
	var x mat.VecDense
	if err := x.SolveVec(m, rhs); err != nil {
		return curve.Point{}, shapeErrorf("circle", "no circle through %v %v %v: %v", a, b, c, err)
	}
	return curve.Pt(x.AtVec(0), x.AtVec(1)), nil
}

// ---------------------------------------------------------------------------
// Darts
// ---------------------------------------------------------------------------

// Dart builds the outline that replaces the base line v0->v1 when a dart of
// the given mouth width and flank depth is sewn into it at location (a
// fraction of the base, measured from v0).
//
// The returned five points are v0, the two mouth points with the tip between
// them, and the new end of the base: the base grows so that, once the dart
// is closed, both flanks lie along the original line. Each flank from a
// mouth point to the tip has length depth.
func Dart(v0, v1 curve.Point, width, depth, location float64) (EdgeSequence, error) {
	if !(width > 0) || !(depth > width/2) {
		return nil, shapeErrorf("dart", "depth %g must exceed half the width %g", depth, width)
	}
	if !(location > 0 && location < 1) {
		return nil, shapeErrorf("dart", "location %g outside (0, 1)", location)
	}
	base := v1.Sub(v0)
	l := base.Hypot()
	if l == 0 {
		return nil, shapeErrorf("dart", "degenerate base")
	}
	d1, d2 := l*location, l*(1-location)

	depthPerp := math.Sqrt(depth*depth - width*width/4)
	deltaL := depth * width / (2 * depthPerp)
	side0, side1 := d1+deltaL, d2+deltaL

	alpha := math.Atan(width / 2 / depthPerp)
	top := math.Pi - 2*alpha
	long := math.Sqrt(side0*side0 + side1*side1 - 2*side0*side1*math.Cos(top))

	sin0 := side1 * math.Sin(top) / long
	sin1 := side0 * math.Sin(top) / long
	cos0 := math.Sqrt(1 - sin0*sin0)
	cos1 := math.Sqrt(1 - sin1*sin1)
	// the base angles are obtuse when the opposite side is the longest
	if side1*side1 > side0*side0+long*long {
		cos0 = -cos0
	}
	if side0*side0 > side1*side1+long*long {
		cos1 = -cos1
	}

	// frame: x along the base, unit length
	ux := base.Mul(1 / l)
	uy := geom.Perp(ux)
	at := func(x, y float64) curve.Point {
		return v0.Translate(ux.Mul(x)).Translate(uy.Mul(y))
	}

	p1 := at(d1*cos0, d1*sin0)
	end := at(long, 0)
	p2 := at(long-d2*cos1, d2*sin1)

	mouth := p2.Sub(p1)
	tip := p1.Translate(mouth.Mul(0.5)).Translate(geom.Perp(mouth).Normalize().Mul(-depthPerp))

	return FromVerts(v0, p1, tip, p2, end), nil
}

// DartShape is a dart of the given width and depth centered on a base of
// twice its width starting at the origin. Edges 1 and 2 run from one mouth
// point through the tip to the other.
func DartShape(width, depth float64) (EdgeSequence, error) {
	return Dart(curve.Pt(0, 0), curve.Pt(2*width, 0), width, depth, 0.5)
}
