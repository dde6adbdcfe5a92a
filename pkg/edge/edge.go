// Package edge implements the boundary geometry of sewing pattern panels:
// single edges with optional curvature, chained edge sequences, and the
// factories that build common shapes such as darts.
package edge

import (
	"fmt"
	"iter"
	"math"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/geom"
)

// Edge connects two vertices, straight or along a Curvature.
//
// Length is derived from the current endpoint positions on every call, so it
// stays correct when a shared vertex is moved through another edge.
type Edge struct {
	Start, End *geom.Vertex
	Curve      Curvature // nil for a straight edge

	// GeometricID is the edge's index within its panel boundary. Panel
	// construction, Panel.ReplaceEdges and assembly set it; direct edits to
	// a panel's Edges leave it stale until the next of those.
	GeometricID int
}

// New returns a straight edge between existing vertices.
func New(start, end *geom.Vertex) *Edge {
	return &Edge{Start: start, End: end}
}

// Line returns a straight edge between two new vertices.
func Line(start, end curve.Point) *Edge {
	return New(geom.FromPoint(start), geom.FromPoint(end))
}

// CurveEdge returns a Bezier edge with one or two relative control points.
func CurveEdge(start, end curve.Point, controls ...curve.Point) *Edge {
	e := Line(start, end)
	e.Curve = NewBezier(controls...)
	return e
}

// CircleEdge returns an arc edge between start and end.
func CircleEdge(start, end curve.Point, arc Arc) *Edge {
	e := Line(start, end)
	e.Curve = arc
	return e
}

// Kind reports the edge geometry.
func (e *Edge) Kind() Kind {
	if e.Curve == nil {
		return KindStraight
	}
	return e.Curve.Kind()
}

// Chord returns End - Start.
func (e *Edge) Chord() curve.Vec2 {
	return e.End.Point().Sub(e.Start.Point())
}

// Length returns the arc length at the default accuracy.
func (e *Edge) Length() float64 {
	return e.LengthAcc(config.DefaultTolerance().Arclen)
}

// LengthAcc returns the arc length evaluated to the given accuracy.
func (e *Edge) LengthAcc(accuracy float64) float64 {
	if e.Curve == nil {
		return e.Chord().Hypot()
	}
	return e.Curve.Arclen(e.Start.Point(), e.End.Point(), accuracy)
}

// Equal reports whether e and o have the same length within tol. Only the
// length is compared; the curvature may differ.
func (e *Edge) Equal(o *Edge, tol float64) bool {
	return math.Abs(e.Length()-o.Length()) <= tol
}

// Eval returns the point at parameter t in [0, 1].
func (e *Edge) Eval(t float64) curve.Point {
	s, en := e.Start.Point(), e.End.Point()
	if e.Curve == nil {
		return s.Lerp(en, t)
	}
	return e.Curve.Eval(s, en, t)
}

// Extremes returns the endpoints plus every interior point where the edge
// is extremal along one of dirs. Their projections onto each dir span the
// edge exactly.
func (e *Edge) Extremes(dirs ...curve.Vec2) []curve.Point {
	s, en := e.Start.Point(), e.End.Point()
	out := []curve.Point{s, en}
	if e.Curve == nil {
		return out
	}
	for _, d := range dirs {
		out = append(out, e.Curve.Extremes(s, en, d)...)
	}
	return out
}

// BoundingBox returns the exact 2D bounds of the edge.
func (e *Edge) BoundingBox() curve.Rect {
	pts := e.Extremes(curve.Vec(1, 0), curve.Vec(0, 1))
	r := curve.NewRectFromPoints(pts[0], pts[1])
	for _, p := range pts[2:] {
		r = r.UnionPoint(p)
	}
	return r
}

// Elements yields the path elements tracing the edge, without a MoveTo.
func (e *Edge) Elements(tolerance float64) iter.Seq[curve.PathElement] {
	if e.Curve == nil {
		end := e.End.Point()
		return func(yield func(curve.PathElement) bool) {
			yield(curve.LineTo(end))
		}
	}
	return e.Curve.Elements(e.Start.Point(), e.End.Point(), tolerance)
}

// Flip reverses the edge direction in place. The curve keeps its shape.
func (e *Edge) Flip() {
	e.Start, e.End = e.End, e.Start
	if e.Curve != nil {
		e.Curve = e.Curve.Flipped()
	}
}

// Reflect updates the curvature after the vertices were mirrored. Vertices
// are shared between edges, so mirroring them is the owner's job.
func (e *Edge) Reflect() {
	if e.Curve != nil {
		e.Curve = e.Curve.Reflected()
	}
}

// Clone returns a copy with its own vertices.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Start = e.Start.Clone()
	c.End = e.End.Clone()
	return &c
}

// SubdivideLen splits e into pieces whose arc lengths are the given
// fractions of the whole. Fractions must be positive and sum to one. The
// pieces reuse e's endpoint vertices.
func (e *Edge) SubdivideLen(fractions []float64) (EdgeSequence, error) {
	if len(fractions) == 0 {
		return nil, shapeErrorf("subdivide", "no fractions")
	}
	sum := 0.0
	for _, f := range fractions {
		if !(f > 0) {
			return nil, shapeErrorf("subdivide", "fraction %g is not positive", f)
		}
		sum += f
	}
	if math.Abs(sum-1) > 1e-9 {
		return nil, shapeErrorf("subdivide", "fractions sum to %g, want 1", sum)
	}

	s, en := e.Start.Point(), e.End.Point()
	var points []curve.Point
	var pieces []Curvature
	if e.Curve == nil {
		acc := 0.0
		for _, f := range fractions[:len(fractions)-1] {
			acc += f
			points = append(points, s.Lerp(en, acc))
		}
		pieces = make([]Curvature, len(fractions))
	} else {
		points, pieces = e.Curve.Split(s, en, fractions, config.DefaultTolerance().Arclen)
	}

	verts := make([]*geom.Vertex, 0, len(fractions)+1)
	verts = append(verts, e.Start)
	for _, p := range points {
		verts = append(verts, geom.FromPoint(p))
	}
	verts = append(verts, e.End)

	out := make(EdgeSequence, len(fractions))
	for i := range out {
		out[i] = &Edge{Start: verts[i], End: verts[i+1], Curve: pieces[i]}
	}
	return out, nil
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s %v->%v", e.Kind(), e.Start, e.End)
}
