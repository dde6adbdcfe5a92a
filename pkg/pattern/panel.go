package pattern

import (
	"fmt"
	"slices"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/geom"
)

// Assemblable is a node of a pattern tree: a Panel or a Component.
type Assemblable interface {
	Name() string
	// Interface returns the named interface, or nil.
	Interface(name string) *Interface
	InterfaceNames() []string
	// BBox3D bounds the node's outline after its placement, including the
	// placement of every descendant.
	BBox3D() sdf.Box3
	TranslateBy(d v3.Vec)
	RotateBy(r sdf.M44)
	// Mirror reflects the node across the YZ plane in place.
	Mirror()
	Assemble() (*Spec, error)
	AssembleWith(tol config.Tolerance) (*Spec, error)

	collect(a *assembler, parent geom.Placement)
	walkPanels(parent geom.Placement, fn func(p *Panel, world geom.Placement))
}

// Panel is a closed 2D outline placed in 3D.
type Panel struct {
	name  string
	Edges edge.EdgeSequence

	Placement  geom.Placement
	Interfaces map[string]*Interface
	// Stitches declared at panel level, for example a dart sewn shut.
	Stitches Stitches

	// views holds every interface that references this panel, so boundary
	// edits can repair them.
	views []*Interface
}

// NewPanel returns a panel with the given boundary, placed at the origin.
func NewPanel(name string, edges edge.EdgeSequence) *Panel {
	edges.Renumber()
	return &Panel{
		name:       name,
		Edges:      edges,
		Placement:  geom.Identity(),
		Interfaces: make(map[string]*Interface),
	}
}

func (p *Panel) Name() string { return p.name }

func (p *Panel) SetName(name string) { p.name = name }

func (p *Panel) Interface(name string) *Interface { return p.Interfaces[name] }

func (p *Panel) InterfaceNames() []string {
	return sortedKeys(p.Interfaces)
}

// SetInterface defines the named interface over boundary edges of p.
func (p *Panel) SetInterface(name string, edges ...*edge.Edge) *Interface {
	i := NewInterface(p, edges...)
	p.Interfaces[name] = i
	return i
}

// AddInterface stores an existing interface under name.
func (p *Panel) AddInterface(name string, i *Interface) {
	p.Interfaces[name] = i
}

func (p *Panel) Translation() v3.Vec { return p.Placement.Translation }

func (p *Panel) SetTranslation(t v3.Vec) { p.Placement.Translation = t }

func (p *Panel) TranslateBy(d v3.Vec) { p.Placement.TranslateBy(d) }

func (p *Panel) SetRotation(r sdf.M44) { p.Placement.Rotation = r }

func (p *Panel) RotateBy(r sdf.M44) { p.Placement.RotateBy(r) }

// BBox returns the 2D bounds of the outline in panel coordinates.
func (p *Panel) BBox() curve.Rect {
	return p.Edges.BoundingBox()
}

func (p *Panel) BBox3D() sdf.Box3 {
	box := geom.EmptyBox()
	p.walkPanels(geom.Identity(), func(q *Panel, world geom.Placement) {
		box = q.extend(box, world)
	})
	return box
}

func (p *Panel) extend(box sdf.Box3, world geom.Placement) sdf.Box3 {
	// world axis i reads row i of the rotation in the panel plane
	m := world.Matrix()
	dirs := []curve.Vec2{
		curve.Vec(m[0][0], m[0][1]),
		curve.Vec(m[1][0], m[1][1]),
		curve.Vec(m[2][0], m[2][1]),
	}
	for _, e := range p.Edges {
		for _, pt := range e.Extremes(dirs...) {
			box = geom.Include(box, world.ApplyPlanar(pt))
		}
	}
	return box
}

// SetPivot moves the panel's local origin to pt. With replicatePlacement the
// translation is adjusted so the panel stays where it is in 3D; otherwise
// the outline moves relative to its placement.
func (p *Panel) SetPivot(pt curve.Point, replicatePlacement bool) {
	p.Edges.Shift(curve.Vec(-pt.X, -pt.Y))
	if replicatePlacement {
		p.Placement.Translation = p.Placement.ApplyPlanar(pt)
	}
}

// TopCenterPivot moves the local origin to the middle of the top of the
// outline's bounding box.
func (p *Panel) TopCenterPivot() {
	box := p.BBox()
	p.SetPivot(curve.Pt(box.Center().X, box.MaxY()), false)
}

// Mirror reflects the panel across the YZ plane. The outline is mirrored
// about its local x = 0 and the boundary reversed so it keeps its winding.
// Interfaces over the panel are updated to trace the mirrored edges in the
// mirrored direction.
func (p *Panel) Mirror() {
	for _, v := range p.Edges.Verts() {
		v.X = -v.X
	}
	for _, e := range p.Edges {
		e.Reflect()
	}
	p.Edges.Reverse()
	for _, view := range p.views {
		for k := range view.parts {
			if view.parts[k].Panel == p {
				view.parts[k].Reversed = !view.parts[k].Reversed
			}
		}
	}
	p.Placement.MirrorX()
}

// ReplaceEdges rewrites count boundary edges starting at i with the chained
// run with, wrapping around the loop if needed. Every interface viewing a
// replaced edge is repaired to view the new run instead.
func (p *Panel) ReplaceEdges(i, count int, with edge.EdgeSequence) error {
	return p.ReplaceEdgesMapped(i, count, with, nil)
}

// ReplaceEdgesMapped is ReplaceEdges where spans[k] names the half-open
// range of with that takes the place of the k-th replaced edge. An
// interface viewing only some of the replaced edges is repaired to view
// only their ranges. Ranges must be ordered and may leave edges of with
// uncovered.
func (p *Panel) ReplaceEdgesMapped(i, count int, with edge.EdgeSequence, spans [][2]int) error {
	n := len(p.Edges)
	if i < 0 || i >= n || count < 1 || count > n {
		return &edge.ShapeError{Op: "replace", Message: "edge range out of bounds for panel " + p.name}
	}
	if spans != nil {
		if len(spans) != count {
			return &edge.ShapeError{Op: "replace", Message: fmt.Sprintf("%d spans for %d replaced edges", len(spans), count)}
		}
		prev := 0
		for _, sp := range spans {
			if sp[0] < prev || sp[0] > sp[1] || sp[1] > len(with) {
				return &edge.ShapeError{Op: "replace", Message: fmt.Sprintf("span %v out of order for a run of %d edges", sp, len(with))}
			}
			prev = sp[1]
		}
	}
	removed := make([]*edge.Edge, count)
	for k := range removed {
		removed[k] = p.Edges[(i+k)%n]
	}
	if err := p.Edges.Replace(i, count, with); err != nil {
		return err
	}
	p.Edges.Renumber()
	for _, view := range p.views {
		view.replace(p, removed, with, spans)
	}
	return nil
}

func (p *Panel) Assemble() (*Spec, error) {
	return p.AssembleWith(config.DefaultTolerance())
}

func (p *Panel) AssembleWith(tol config.Tolerance) (*Spec, error) {
	return assemble(p, tol)
}

func (p *Panel) collect(a *assembler, parent geom.Placement) {
	a.addPanel(p, p.Placement.Then(parent))
	a.addStitches(p, p.Stitches)
}

func (p *Panel) walkPanels(parent geom.Placement, fn func(*Panel, geom.Placement)) {
	fn(p, p.Placement.Then(parent))
}

// Clone returns a deep copy whose name carries suffix. Interfaces over the
// panel are copied to view the copy.
func (p *Panel) Clone(suffix string) *Panel {
	c := newCloner(suffix)
	c.shell(p)
	return c.finish(p)
}

func sortedKeys(m map[string]*Interface) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// onBoundary reports whether e is one of the panel's edges.
func (p *Panel) onBoundary(e *edge.Edge) bool {
	return slices.Contains(p.Edges, e)
}
