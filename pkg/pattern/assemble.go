package pattern

import (
	"fmt"
	"math"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/geom"
)

type pendingStitch struct {
	owner string
	index int
	// scope holds the panels of the owner's subtree.
	scope map[*Panel]bool
	Stitch
}

type assembler struct {
	tol      config.Tolerance
	spec     *Spec
	index    map[*Panel]int
	names    map[string]bool
	stitches []pendingStitch
	problems []error
}

func assemble(root Assemblable, tol config.Tolerance) (*Spec, error) {
	a := &assembler{
		tol:   tol,
		spec:  &Spec{Name: root.Name()},
		index: make(map[*Panel]int),
		names: make(map[string]bool),
	}
	root.collect(a, geom.Identity())
	for _, s := range a.stitches {
		a.resolve(s)
	}
	if len(a.problems) > 0 {
		return nil, &AssemblyError{Root: root.Name(), Problems: a.problems}
	}
	Logger().Debug("assembled pattern",
		"root", root.Name(),
		"panels", len(a.spec.Panels),
		"stitches", len(a.spec.Stitches))
	return a.spec, nil
}

func (a *assembler) fail(format string, args ...any) {
	a.problems = append(a.problems, fmt.Errorf(format, args...))
}

func (a *assembler) addPanel(p *Panel, world geom.Placement) {
	if _, ok := a.index[p]; ok {
		a.fail("panel %q appears twice in the tree", p.name)
		return
	}
	if a.names[p.name] {
		a.fail("duplicate panel name %q", p.name)
	}
	a.names[p.name] = true
	if !p.Edges.IsLooped() {
		a.fail("panel %q: boundary is not a closed loop", p.name)
		return
	}

	n := len(p.Edges)
	ps := PanelSpec{
		Name:        p.name,
		Translation: [3]float64{world.Translation.X, world.Translation.Y, world.Translation.Z},
		Rotation:    world.Euler(),
		Vertices:    make([][2]float64, n),
		Edges:       make([]EdgeSpec, n),
	}
	for j, e := range p.Edges {
		e.GeometricID = j
		ps.Vertices[j] = [2]float64{e.Start.X, e.Start.Y}
		ps.Edges[j] = EdgeSpec{
			Endpoints: [2]int{j, (j + 1) % n},
			Curvature: curvatureSpec(e),
		}
	}
	a.index[p] = len(a.spec.Panels)
	a.spec.Panels = append(a.spec.Panels, ps)
}

func curvatureSpec(e *edge.Edge) *CurvatureSpec {
	switch c := e.Curve.(type) {
	case edge.Bezier:
		cs := &CurvatureSpec{Type: c.Kind().String()}
		for _, p := range c.Controls {
			cs.Params = append(cs.Params, [2]float64{p.X, p.Y})
		}
		return cs
	case edge.Arc:
		return &CurvatureSpec{
			Type:     c.Kind().String(),
			Params:   [][2]float64{{0.5, c.CenterY}},
			Radius:   c.Radius(e.Start.Point(), e.End.Point()),
			LargeArc: c.LargeArc,
			Right:    c.Right(),
		}
	default:
		return nil
	}
}

func (a *assembler) addStitches(owner Assemblable, s Stitches) {
	if len(s) == 0 {
		return
	}
	scope := panelSet(owner)
	for i, st := range s {
		a.stitches = append(a.stitches, pendingStitch{owner: owner.Name(), index: i, scope: scope, Stitch: st})
	}
}

func (a *assembler) resolve(s pendingStitch) {
	if s.A == nil || s.B == nil || s.A.Len() == 0 || s.B.Len() == 0 {
		a.fail("stitch %d of %q: empty side", s.index, s.owner)
		return
	}
	var out StitchSpec
	out.Owner = s.owner
	ok := true
	for k, side := range []*Interface{s.A, s.B} {
		refs, good := a.side(s, side)
		ok = ok && good
		out.Sides[k] = StitchSide{Edges: refs, Ruffle: effectiveRuffle(side)}
	}
	if !ok {
		return
	}
	la, lb := s.A.ProjectedLength(), s.B.ProjectedLength()
	if math.Abs(la-lb) > a.tol.StitchLength {
		a.problems = append(a.problems, &StitchError{
			Owner: s.owner, Index: s.index,
			LengthA: la, LengthB: lb,
			Tolerance: a.tol.StitchLength,
		})
		return
	}
	a.spec.Stitches = append(a.spec.Stitches, out)
}

func (a *assembler) side(s pendingStitch, i *Interface) ([]EdgeRef, bool) {
	refs := make([]EdgeRef, 0, i.Len())
	ok := true
	for _, part := range i.parts {
		if _, in := a.index[part.Panel]; !in {
			a.fail("stitch %d of %q: panel %q is not part of the assembled tree", s.index, s.owner, part.Panel.name)
			ok = false
			continue
		}
		if !s.scope[part.Panel] {
			a.fail("stitch %d of %q: panel %q is outside the subtree of %q", s.index, s.owner, part.Panel.name, s.owner)
			ok = false
			continue
		}
		j := part.Panel.Edges.Index(part.Edge)
		if j < 0 {
			a.fail("stitch %d of %q: edge is not on the boundary of panel %q", s.index, s.owner, part.Panel.name)
			ok = false
			continue
		}
		refs = append(refs, EdgeRef{Panel: part.Panel.name, Edge: j, Reversed: part.Reversed})
	}
	return refs, ok
}

func effectiveRuffle(i *Interface) float64 {
	l := i.Length()
	if l == 0 {
		return 1
	}
	return i.ProjectedLength() / l
}
