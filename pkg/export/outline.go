package export

import (
	"fmt"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/geom"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// Outline rebuilds the closed boundary of a panel spec in panel-local
// coordinates.
func Outline(ps pattern.PanelSpec) (edge.EdgeSequence, error) {
	n := len(ps.Vertices)
	if n < 2 || len(ps.Edges) != n {
		return nil, fmt.Errorf("panel %q: %d vertices for %d edges", ps.Name, n, len(ps.Edges))
	}
	verts := make([]*geom.Vertex, n)
	for i, v := range ps.Vertices {
		verts[i] = geom.V(v[0], v[1])
	}
	out := make(edge.EdgeSequence, n)
	for j, es := range ps.Edges {
		a, b := es.Endpoints[0], es.Endpoints[1]
		if a != j || b != (j+1)%n {
			return nil, fmt.Errorf("panel %q: edge %d runs %d->%d", ps.Name, j, a, b)
		}
		e := edge.New(verts[a], verts[b])
		c, err := curvature(es.Curvature)
		if err != nil {
			return nil, fmt.Errorf("panel %q: edge %d: %w", ps.Name, j, err)
		}
		e.Curve = c
		e.GeometricID = j
		out[j] = e
	}
	return out, nil
}

func curvature(cs *pattern.CurvatureSpec) (edge.Curvature, error) {
	if cs == nil {
		return nil, nil
	}
	pts := make([]curve.Point, len(cs.Params))
	for i, p := range cs.Params {
		pts[i] = curve.Pt(p[0], p[1])
	}
	switch cs.Type {
	case edge.KindQuadratic.String(), edge.KindCubic.String():
		want := 1
		if cs.Type == edge.KindCubic.String() {
			want = 2
		}
		if len(pts) != want {
			return nil, fmt.Errorf("%s curve with %d control points", cs.Type, len(pts))
		}
		return edge.NewBezier(pts...), nil
	case edge.KindCircle.String():
		if len(pts) != 1 {
			return nil, fmt.Errorf("circle with %d centers", len(pts))
		}
		return edge.Arc{CenterY: pts[0].Y, LargeArc: cs.LargeArc}, nil
	}
	return nil, fmt.Errorf("unknown curvature type %q", cs.Type)
}
