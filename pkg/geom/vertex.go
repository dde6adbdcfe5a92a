// Package geom holds the geometric primitives shared by the pattern kernel:
// the mutable vertex cell that edges alias, conversions between an edge's
// local frame and panel coordinates, and the rigid placement of a panel in
// 3D space.
package geom

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// Vertex is a 2D point in panel-local coordinates.
//
// Vertices are referenced by pointer. Two consecutive edges of a chained
// sequence hold the same *Vertex, so moving it moves both edge endpoints.
type Vertex struct {
	X, Y float64
}

// V returns a new vertex at (x, y).
func V(x, y float64) *Vertex {
	return &Vertex{X: x, Y: y}
}

// FromPoint returns a new vertex at p.
func FromPoint(p curve.Point) *Vertex {
	return &Vertex{X: p.X, Y: p.Y}
}

// Point returns the vertex position as a curve point.
func (v *Vertex) Point() curve.Point {
	return curve.Pt(v.X, v.Y)
}

// Set moves the vertex to p.
func (v *Vertex) Set(p curve.Point) {
	v.X, v.Y = p.X, p.Y
}

// Move translates the vertex by d.
func (v *Vertex) Move(d curve.Vec2) {
	v.X += d.X
	v.Y += d.Y
}

// Clone returns an unaliased copy.
func (v *Vertex) Clone() *Vertex {
	c := *v
	return &c
}

func (v *Vertex) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Near reports whether a and b lie within tol of each other.
func Near(a, b curve.Point, tol float64) bool {
	return a.Distance(b) <= tol
}

// NearlyEqual reports whether |a-b| <= tol.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
