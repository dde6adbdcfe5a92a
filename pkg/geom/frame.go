package geom

import "honnef.co/go/curve"

// RelToAbs converts rel, given in the frame of the directed segment
// start->end, into panel coordinates. The frame's X axis is end-start
// (unnormalized) and its Y axis is that vector rotated a quarter turn
// counter-clockwise, so (0,0) is start and (1,0) is end.
func RelToAbs(start, end, rel curve.Point) curve.Point {
	d := end.Sub(start)
	perp := curve.Vec(-d.Y, d.X)
	return start.Translate(d.Mul(rel.X)).Translate(perp.Mul(rel.Y))
}

// AbsToRel is the inverse of RelToAbs. A degenerate segment maps every point
// to the origin.
func AbsToRel(start, end, p curve.Point) curve.Point {
	d := end.Sub(start)
	l2 := d.Hypot2()
	if l2 == 0 {
		return curve.Pt(0, 0)
	}
	v := p.Sub(start)
	return curve.Pt(v.Dot(d)/l2, d.Cross(v)/l2)
}

// Perp returns v rotated a quarter turn counter-clockwise.
func Perp(v curve.Vec2) curve.Vec2 {
	return curve.Vec(-v.Y, v.X)
}
