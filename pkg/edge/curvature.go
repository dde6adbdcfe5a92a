package edge

import (
	"iter"
	"math"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/geom"
)

// Kind classifies the geometry between an edge's endpoints.
type Kind int

const (
	KindStraight Kind = iota
	KindQuadratic
	KindCubic
	KindCircle
)

func (k Kind) String() string {
	switch k {
	case KindStraight:
		return "straight"
	case KindQuadratic:
		return "quadratic"
	case KindCubic:
		return "cubic"
	case KindCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Curvature describes how an edge deviates from its chord. Parameters are
// stored relative to the edge's own start->end frame (see geom.RelToAbs), so
// moving the endpoints carries the curve along without edits.
//
// Implementations are immutable values.
type Curvature interface {
	Kind() Kind

	// Eval returns the absolute point at parameter t in [0, 1].
	Eval(start, end curve.Point, t float64) curve.Point
	// Arclen returns the length of the curve between start and end.
	Arclen(start, end curve.Point, accuracy float64) float64
	// Elements yields the absolute path elements from start to end,
	// without the leading MoveTo.
	Elements(start, end curve.Point, tolerance float64) iter.Seq[curve.PathElement]
	// Split cuts the curve at the given cumulative arc length fractions,
	// returning the interior cut points and one curvature per piece.
	Split(start, end curve.Point, fractions []float64, accuracy float64) ([]curve.Point, []Curvature)
	// Extremes returns the interior points where the projection of the
	// curve onto dir is stationary. Together with the endpoints they bound
	// the curve exactly along dir.
	Extremes(start, end curve.Point, dir curve.Vec2) []curve.Point

	// Flipped returns the same curve for the edge traversed end->start.
	Flipped() Curvature
	// Reflected returns the curve after its plane has been mirrored.
	Reflected() Curvature
}

// ---------------------------------------------------------------------------
// Bezier
// ---------------------------------------------------------------------------

// Bezier is a quadratic (one control point) or cubic (two control points)
// Bezier curve with relative control points.
type Bezier struct {
	Controls []curve.Point
}

// NewBezier panics unless given one or two control points.
func NewBezier(controls ...curve.Point) Bezier {
	if len(controls) != 1 && len(controls) != 2 {
		panic("edge: bezier curvature needs one or two control points")
	}
	return Bezier{Controls: append([]curve.Point(nil), controls...)}
}

func (b Bezier) Kind() Kind {
	if len(b.Controls) == 1 {
		return KindQuadratic
	}
	return KindCubic
}

func (b Bezier) segment(start, end curve.Point) curve.PathSegment {
	if len(b.Controls) == 1 {
		return curve.PathSegment{
			Kind: curve.QuadKind,
			P0:   start,
			P1:   geom.RelToAbs(start, end, b.Controls[0]),
			P2:   end,
		}
	}
	return curve.PathSegment{
		Kind: curve.CubicKind,
		P0:   start,
		P1:   geom.RelToAbs(start, end, b.Controls[0]),
		P2:   geom.RelToAbs(start, end, b.Controls[1]),
		P3:   end,
	}
}

func (b Bezier) Eval(start, end curve.Point, t float64) curve.Point {
	return b.segment(start, end).Eval(t)
}

func (b Bezier) Arclen(start, end curve.Point, accuracy float64) float64 {
	return b.segment(start, end).Arclen(accuracy)
}

func (b Bezier) Elements(start, end curve.Point, _ float64) iter.Seq[curve.PathElement] {
	seg := b.segment(start, end)
	return func(yield func(curve.PathElement) bool) {
		yield(seg.PathElement())
	}
}

func (b Bezier) Split(start, end curve.Point, fractions []float64, accuracy float64) ([]curve.Point, []Curvature) {
	seg := b.segment(start, end)
	total := seg.Arclen(accuracy)

	var points []curve.Point
	var pieces []Curvature
	t0, acc := 0.0, 0.0
	for i, f := range fractions {
		t1 := 1.0
		if i < len(fractions)-1 {
			acc += f
			t1 = seg.SolveForArclen(acc*total, accuracy)
		}
		sub := seg.Subsegment(t0, t1)
		s, e := sub.P0, sub.End()
		if i < len(fractions)-1 {
			points = append(points, e)
		}
		ctrl := []curve.Point{geom.AbsToRel(s, e, sub.P1)}
		if sub.Kind == curve.CubicKind {
			ctrl = append(ctrl, geom.AbsToRel(s, e, sub.P2))
		}
		pieces = append(pieces, Bezier{Controls: ctrl})
		t0 = t1
	}
	return points, pieces
}

func (b Bezier) Extremes(start, end curve.Point, dir curve.Vec2) []curve.Point {
	seg := b.segment(start, end)
	// turn dir onto +x; go-curve reports the x and y extrema of the result
	rot := curve.Rotate(-dir.Angle())
	turned := curve.PathSegment{
		Kind: seg.Kind,
		P0:   seg.P0.Transform(rot),
		P1:   seg.P1.Transform(rot),
		P2:   seg.P2.Transform(rot),
		P3:   seg.P3.Transform(rot),
	}
	ts, n := turned.Extrema()
	out := make([]curve.Point, 0, n)
	for _, t := range ts[:n] {
		out = append(out, seg.Eval(t))
	}
	return out
}

func (b Bezier) Flipped() Curvature {
	n := len(b.Controls)
	out := make([]curve.Point, n)
	for i, c := range b.Controls {
		out[n-1-i] = curve.Pt(1-c.X, -c.Y)
	}
	return Bezier{Controls: out}
}

func (b Bezier) Reflected() Curvature {
	out := make([]curve.Point, len(b.Controls))
	for i, c := range b.Controls {
		out[i] = curve.Pt(c.X, -c.Y)
	}
	return Bezier{Controls: out}
}

// ---------------------------------------------------------------------------
// Circle arcs
// ---------------------------------------------------------------------------

// Arc is a circular arc. CenterY is the center's offset from the chord
// midpoint in the edge frame, so the center sits at (0.5, CenterY). LargeArc
// picks the longer of the two arcs through the endpoints.
//
// A minor arc bulges away from its center, a major arc towards it.
type Arc struct {
	CenterY  float64
	LargeArc bool
}

// ArcFromSweep returns the arc whose signed sweep from start to end, about
// its center, is sweep radians. Positive sweeps run counter-clockwise and
// bulge to the right of the chord direction.
func ArcFromSweep(sweep float64) Arc {
	sign := 1.0
	if sweep < 0 {
		sign = -1
	}
	mag := math.Abs(sweep)
	large := mag > math.Pi
	minor := mag
	if large {
		// the major arc's sense is opposite to its minor counterpart
		minor = 2*math.Pi - mag
		sign = -sign
	}
	return Arc{CenterY: sign * 0.5 / math.Tan(minor/2), LargeArc: large}
}

func (a Arc) Kind() Kind { return KindCircle }

// geometry returns center, radius, start angle and signed sweep.
func (a Arc) geometry(start, end curve.Point) (curve.Point, float64, float64, float64) {
	c := geom.RelToAbs(start, end, curve.Pt(0.5, a.CenterY))
	r := c.Distance(start)
	a0 := start.Sub(c).Angle()

	minor := 2 * math.Atan2(0.5, math.Abs(a.CenterY))
	sign := 1.0
	if a.CenterY < 0 {
		sign = -1
	}
	sweep := sign * minor
	if a.LargeArc {
		sweep = -sign * (2*math.Pi - minor)
	}
	return c, r, a0, sweep
}

// Sweep returns the signed sweep angle in radians.
func (a Arc) Sweep() float64 {
	_, _, _, sweep := a.geometry(curve.Pt(0, 0), curve.Pt(1, 0))
	return sweep
}

// Radius returns the absolute radius for the given endpoints.
func (a Arc) Radius(start, end curve.Point) float64 {
	return start.Distance(end) * math.Hypot(0.5, a.CenterY)
}

// Right reports whether the arc bulges to the right of start->end.
func (a Arc) Right() bool {
	return a.Sweep() > 0
}

func (a Arc) Eval(start, end curve.Point, t float64) curve.Point {
	c, r, a0, sweep := a.geometry(start, end)
	return c.Translate(curve.VecFromAngle(a0 + t*sweep).Mul(r))
}

func (a Arc) Arclen(start, end curve.Point, _ float64) float64 {
	_, r, _, sweep := a.geometry(start, end)
	return r * math.Abs(sweep)
}

func (a Arc) Elements(start, end curve.Point, tolerance float64) iter.Seq[curve.PathElement] {
	c, r, a0, sweep := a.geometry(start, end)
	arc := curve.Arc{Center: c, Radii: curve.Vec(r, r), StartAngle: a0, SweepAngle: sweep}
	return func(yield func(curve.PathElement) bool) {
		first := true
		for el := range arc.PathElements(tolerance) {
			if first {
				first = false
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

func (a Arc) Split(start, end curve.Point, fractions []float64, _ float64) ([]curve.Point, []Curvature) {
	c, r, a0, sweep := a.geometry(start, end)
	var points []curve.Point
	var pieces []Curvature
	acc := 0.0
	for i, f := range fractions {
		if i < len(fractions)-1 {
			acc += f
			points = append(points, c.Translate(curve.VecFromAngle(a0+acc*sweep).Mul(r)))
		}
		pieces = append(pieces, ArcFromSweep(f*sweep))
	}
	return points, pieces
}

func (a Arc) Extremes(start, end curve.Point, dir curve.Vec2) []curve.Point {
	c, r, a0, sweep := a.geometry(start, end)
	var out []curve.Point
	for _, th := range []float64{dir.Angle(), dir.Angle() + math.Pi} {
		// offset of th from a0, measured in the sweep's sense
		d := math.Mod(th-a0, 2*math.Pi)
		if sweep < 0 {
			d = -d
		}
		if d < 0 {
			d += 2 * math.Pi
		}
		if d > 0 && d < math.Abs(sweep) {
			out = append(out, c.Translate(curve.VecFromAngle(th).Mul(r)))
		}
	}
	return out
}

func (a Arc) Flipped() Curvature {
	return Arc{CenterY: -a.CenterY, LargeArc: a.LargeArc}
}

func (a Arc) Reflected() Curvature {
	return Arc{CenterY: -a.CenterY, LargeArc: a.LargeArc}
}
