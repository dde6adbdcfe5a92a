package edge

import (
	"math"
	"slices"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/geom"
)

// EdgeSequence is an ordered run of edges. In a chained sequence each edge
// starts at the vertex where its predecessor ends; a looped sequence also
// ends where it starts. Sequences built by this package share the vertex
// between neighbours, so chaining survives vertex edits.
type EdgeSequence []*Edge

// chainTol is the distance at which unshared endpoints still count as chained.
const chainTol = 1e-6

// Verts returns the distinct vertices in traversal order.
func (s EdgeSequence) Verts() []*geom.Vertex {
	var out []*geom.Vertex
	seen := make(map[*geom.Vertex]bool)
	add := func(v *geom.Vertex) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, e := range s {
		add(e.Start)
		add(e.End)
	}
	return out
}

// Points returns the positions of Verts.
func (s EdgeSequence) Points() []curve.Point {
	verts := s.Verts()
	out := make([]curve.Point, len(verts))
	for i, v := range verts {
		out[i] = v.Point()
	}
	return out
}

// Length is the sum of edge arc lengths.
func (s EdgeSequence) Length() float64 {
	total := 0.0
	for _, e := range s {
		total += e.Length()
	}
	return total
}

// Start returns the first vertex, or nil for an empty sequence.
func (s EdgeSequence) Start() *geom.Vertex {
	if len(s) == 0 {
		return nil
	}
	return s[0].Start
}

// End returns the last vertex, or nil for an empty sequence.
func (s EdgeSequence) End() *geom.Vertex {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1].End
}

// Chord returns the vector from the first to the last vertex.
func (s EdgeSequence) Chord() curve.Vec2 {
	if len(s) == 0 {
		return curve.Vec2{}
	}
	return s.End().Point().Sub(s.Start().Point())
}

func linked(a, b *geom.Vertex) bool {
	return a == b || geom.Near(a.Point(), b.Point(), chainTol)
}

// IsChained reports whether every edge starts where the previous one ends.
func (s EdgeSequence) IsChained() bool {
	for i := 1; i < len(s); i++ {
		if !linked(s[i-1].End, s[i].Start) {
			return false
		}
	}
	return true
}

// IsLooped reports whether s is chained and closes on itself.
func (s EdgeSequence) IsLooped() bool {
	return len(s) > 0 && s.IsChained() && linked(s.End(), s.Start())
}

// Closure returns the sum of the edge chord vectors. It is zero for a
// closed loop.
func (s EdgeSequence) Closure() curve.Vec2 {
	var sum curve.Vec2
	for _, e := range s {
		sum = sum.Add(e.Chord())
	}
	return sum
}

// Index returns the position of e in s, or -1.
func (s EdgeSequence) Index(e *Edge) int {
	return slices.Index(s, e)
}

// Contains reports whether e is one of the edges of s.
func (s EdgeSequence) Contains(e *Edge) bool {
	return s.Index(e) >= 0
}

// Reverse reverses the traversal in place: the order of edges is reversed
// and every edge is flipped.
func (s EdgeSequence) Reverse() EdgeSequence {
	slices.Reverse(s)
	for _, e := range s {
		e.Flip()
	}
	return s
}

// Shift translates every distinct vertex by d.
func (s EdgeSequence) Shift(d curve.Vec2) EdgeSequence {
	for _, v := range s.Verts() {
		v.Move(d)
	}
	return s
}

// Transform applies aff to every distinct vertex. Orientation-reversing
// transforms reflect the curvatures too.
func (s EdgeSequence) Transform(aff curve.Affine) EdgeSequence {
	for _, v := range s.Verts() {
		v.Set(v.Point().Transform(aff))
	}
	if aff.Determinant() < 0 {
		for _, e := range s {
			e.Reflect()
		}
	}
	return s
}

// ScaleFromStart scales the sequence uniformly about its first vertex.
func (s EdgeSequence) ScaleFromStart(factor float64) EdgeSequence {
	if len(s) == 0 {
		return s
	}
	o := s.Start().Point()
	for _, v := range s.Verts() {
		v.Set(o.Translate(v.Point().Sub(o).Mul(factor)))
	}
	return s
}

// Clone deep-copies the sequence, keeping vertex sharing between its edges.
func (s EdgeSequence) Clone() EdgeSequence {
	vs := make(map[*geom.Vertex]*geom.Vertex)
	cp := func(v *geom.Vertex) *geom.Vertex {
		if c, ok := vs[v]; ok {
			return c
		}
		c := v.Clone()
		vs[v] = c
		return c
	}
	out := make(EdgeSequence, len(s))
	for i, e := range s {
		c := *e
		c.Start, c.End = cp(e.Start), cp(e.End)
		out[i] = &c
	}
	return out
}

// BoundingBox returns the exact 2D bounds of the traced outline, curves
// included.
func (s EdgeSequence) BoundingBox() curve.Rect {
	if len(s) == 0 {
		return curve.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	}
	r := s[0].BoundingBox()
	for _, e := range s[1:] {
		r = r.Union(e.BoundingBox())
	}
	return r
}

// Renumber sets each edge's GeometricID to its index in s.
func (s EdgeSequence) Renumber() {
	for j, e := range s {
		e.GeometricID = j
	}
}

// Sample returns n points per edge along the outline, plus straight edge
// endpoints.
func (s EdgeSequence) Sample(n int) []curve.Point {
	var out []curve.Point
	for _, e := range s {
		out = append(out, e.Start.Point())
		if e.Curve != nil {
			for i := 1; i < n; i++ {
				out = append(out, e.Eval(float64(i)/float64(n)))
			}
		}
		out = append(out, e.End.Point())
	}
	return out
}

// Path returns the outline as a Bezier path.
func (s EdgeSequence) Path(tolerance float64) curve.BezPath {
	var p curve.BezPath
	if len(s) == 0 {
		return p
	}
	p.MoveTo(s.Start().Point())
	for _, e := range s {
		for el := range e.Elements(tolerance) {
			p.Push(el)
		}
	}
	if s.IsLooped() {
		p.ClosePath()
	}
	return p
}

// ---------------------------------------------------------------------------
// Editing
// ---------------------------------------------------------------------------

// Substitute replaces s[i] by the chained run with. The run must start and
// end at the replaced edge's endpoints; its end vertices are rebound to the
// existing ones so neighbours stay attached.
func (s *EdgeSequence) Substitute(i int, with EdgeSequence) error {
	return s.Replace(i, 1, with)
}

// Replace removes count consecutive edges starting at i, wrapping past the
// end of a looped sequence, and inserts the chained run with in their place.
// The run must span the same endpoints as the removed edges.
func (s *EdgeSequence) Replace(i, count int, with EdgeSequence) error {
	n := len(*s)
	if i < 0 || i >= n || count < 1 || count > n {
		return shapeErrorf("replace", "edges [%d, +%d) out of range for %d edges", i, count, n)
	}
	if len(with) == 0 {
		return shapeErrorf("replace", "empty replacement")
	}
	if !with.IsChained() {
		return shapeErrorf("replace", "replacement is not chained")
	}
	first := (*s)[i]
	last := (*s)[(i+count-1)%n]
	if !geom.Near(with.Start().Point(), first.Start.Point(), chainTol) ||
		!geom.Near(with.End().Point(), last.End.Point(), chainTol) {
		return shapeErrorf("replace", "replacement spans %v..%v, want %v..%v",
			with.Start(), with.End(), first.Start, last.End)
	}

	rebind(with, with[0].Start, first.Start)
	rebind(with, with[len(with)-1].End, last.End)

	if i+count <= n {
		*s = slices.Replace(*s, i, i+count, with...)
		return nil
	}
	// The run wraps: drop the tail and the head, then append.
	head := i + count - n
	out := slices.Clone((*s)[head:i])
	*s = append(out, with...)
	return nil
}

// rebind points every endpoint equal to old at v.
func rebind(s EdgeSequence, old, v *geom.Vertex) {
	if old == v {
		return
	}
	for _, e := range s {
		if e.Start == old {
			e.Start = v
		}
		if e.End == old {
			e.End = v
		}
	}
}

// SubdivideLen replaces s[i] by its subdivision.
func (s *EdgeSequence) SubdivideLen(i int, fractions []float64) (EdgeSequence, error) {
	if i < 0 || i >= len(*s) {
		return nil, shapeErrorf("subdivide", "edge %d out of range for %d edges", i, len(*s))
	}
	parts, err := (*s)[i].SubdivideLen(fractions)
	if err != nil {
		return nil, err
	}
	*s = slices.Replace(*s, i, i+1, parts...)
	return parts, nil
}
