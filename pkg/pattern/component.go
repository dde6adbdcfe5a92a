package pattern

import (
	"slices"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/geom"
)

// Component groups panels and sub-components into a garment part. It may
// re-export interfaces of its children under its own names and declares the
// stitches between them.
type Component struct {
	name     string
	children []Assemblable

	Placement  geom.Placement
	Interfaces map[string]*Interface
	Stitches   Stitches
}

// NewComponent returns a component holding the given children.
func NewComponent(name string, children ...Assemblable) *Component {
	return &Component{
		name:       name,
		children:   slices.Clone(children),
		Placement:  geom.Identity(),
		Interfaces: make(map[string]*Interface),
	}
}

func (c *Component) Name() string { return c.name }

func (c *Component) SetName(name string) { c.name = name }

// Add appends children.
func (c *Component) Add(children ...Assemblable) {
	c.children = append(c.children, children...)
}

// Children returns the direct children in order.
func (c *Component) Children() []Assemblable {
	return slices.Clone(c.children)
}

// Panels returns every descendant panel in post-order, the order they are
// emitted at assembly.
func (c *Component) Panels() []*Panel {
	var out []*Panel
	c.walkPanels(geom.Identity(), func(p *Panel, _ geom.Placement) {
		out = append(out, p)
	})
	return out
}

// Expose re-exports i under name.
func (c *Component) Expose(name string, i *Interface) {
	c.Interfaces[name] = i
}

func (c *Component) Interface(name string) *Interface { return c.Interfaces[name] }

func (c *Component) InterfaceNames() []string {
	return sortedKeys(c.Interfaces)
}

// Stitch declares that a and b are sewn together.
func (c *Component) Stitch(a, b *Interface) {
	c.Stitches.Append(a, b)
}

func (c *Component) Translation() v3.Vec { return c.Placement.Translation }

func (c *Component) SetTranslation(t v3.Vec) { c.Placement.Translation = t }

func (c *Component) TranslateBy(d v3.Vec) { c.Placement.TranslateBy(d) }

func (c *Component) SetRotation(r sdf.M44) { c.Placement.Rotation = r }

func (c *Component) RotateBy(r sdf.M44) { c.Placement.RotateBy(r) }

func (c *Component) BBox3D() sdf.Box3 {
	box := geom.EmptyBox()
	c.walkPanels(geom.Identity(), func(p *Panel, world geom.Placement) {
		box = p.extend(box, world)
	})
	return box
}

// Mirror reflects the whole subtree across the YZ plane.
func (c *Component) Mirror() {
	for _, ch := range c.children {
		ch.Mirror()
	}
	c.Placement.MirrorX()
}

func (c *Component) Assemble() (*Spec, error) {
	return c.AssembleWith(config.DefaultTolerance())
}

func (c *Component) AssembleWith(tol config.Tolerance) (*Spec, error) {
	return assemble(c, tol)
}

func (c *Component) collect(a *assembler, parent geom.Placement) {
	world := c.Placement.Then(parent)
	for _, ch := range c.children {
		ch.collect(a, world)
	}
	a.addStitches(c, c.Stitches)
}

func (c *Component) walkPanels(parent geom.Placement, fn func(*Panel, geom.Placement)) {
	world := c.Placement.Then(parent)
	for _, ch := range c.children {
		ch.walkPanels(world, fn)
	}
}

// Clone returns a deep copy of the subtree. The component and every panel
// in it get suffix appended to their names; interfaces and stitches are
// rebound to the copies.
func (c *Component) Clone(suffix string) *Component {
	cl := newCloner(suffix)
	for _, p := range c.Panels() {
		cl.shell(p)
	}
	return cl.component(c)
}
