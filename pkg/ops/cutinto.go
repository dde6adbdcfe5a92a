package ops

import (
	"fmt"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/edge"
)

// Cut is the result of CutIntoEdge.
type Cut struct {
	// Edges replaces the base edge: base start to the shape, the shape, and
	// the shape to base end.
	Edges edge.EdgeSequence
	// Shape is the placed copy of the target shape.
	Shape edge.EdgeSequence
	// Sides are the two remaining pieces of the base edge, which usually form
	// the interface where the base was sewn.
	Sides edge.EdgeSequence
}

// CutIntoEdge places a copy of shape onto the straight edge base so that the
// midpoint of the shape's chord sits offset along the edge from its start,
// with the chord along the edge. With right the shape keeps its own side of
// the chord, so the tip of an edge.DartShape dart lands right of the base
// direction, outside a counter-clockwise boundary; otherwise it is
// reflected across the edge. flipTarget mirrors the shape end for end.
//
// CutIntoEdge does not modify the panel; substitute Cut.Edges for base with
// Panel.ReplaceEdges.
func CutIntoEdge(shape edge.EdgeSequence, base *edge.Edge, offset float64, right, flipTarget bool) (Cut, error) {
	if base.Curve != nil {
		return Cut{}, &edge.ShapeError{Op: "cut into edge", Message: "base edge is not straight"}
	}
	if len(shape) == 0 || !shape.IsChained() {
		return Cut{}, &edge.ShapeError{Op: "cut into edge", Message: "shape is not a chained sequence"}
	}
	s, e := base.Start.Point(), base.End.Point()
	dir := e.Sub(s)
	length := dir.Hypot()
	chord := shape.Chord()
	half := chord.Hypot() / 2
	if chord.Hypot() == 0 || length == 0 {
		return Cut{}, &edge.ShapeError{Op: "cut into edge", Message: "degenerate shape or base"}
	}
	if offset-half < 0 || offset+half > length {
		return Cut{}, &edge.ShapeError{Op: "cut into edge",
			Message: fmt.Sprintf("shape of width %g at %g does not fit an edge of length %g", 2*half, offset, length)}
	}

	placed := shape.Clone()
	mid := placed.Start().Point().Translate(chord.Mul(0.5))
	target := s.Translate(dir.Mul(offset / length))

	// chord onto the x axis centered at the origin, then onto the base
	aff := curve.Translate(curve.Vec(-mid.X, -mid.Y)).ThenRotate(-chord.Angle())
	if !right {
		aff = aff.ThenScale(1, -1)
	}
	if flipTarget {
		aff = aff.ThenScale(-1, 1)
	}
	aff = aff.ThenRotate(dir.Angle()).ThenTranslate(curve.Vec(target.X, target.Y))
	placed.Transform(aff)
	if flipTarget {
		// the flip moved the shape start to the base end side
		placed.Reverse()
	}

	first := edge.New(base.Start, placed.Start())
	last := edge.New(placed.End(), base.End)
	out := make(edge.EdgeSequence, 0, len(placed)+2)
	out = append(out, first)
	out = append(out, placed...)
	out = append(out, last)
	return Cut{Edges: out, Shape: placed, Sides: edge.EdgeSequence{first, last}}, nil
}
