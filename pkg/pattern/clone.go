package pattern

import (
	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/geom"
)

// cloner deep-copies a pattern subtree, keeping identity: anything shared
// in the original is shared in the copy. References leaving the subtree are
// kept as they are.
type cloner struct {
	suffix string
	verts  map[*geom.Vertex]*geom.Vertex
	edges  map[*edge.Edge]*edge.Edge
	panels map[*Panel]*Panel
	ifaces map[*Interface]*Interface
}

func newCloner(suffix string) *cloner {
	return &cloner{
		suffix: suffix,
		verts:  make(map[*geom.Vertex]*geom.Vertex),
		edges:  make(map[*edge.Edge]*edge.Edge),
		panels: make(map[*Panel]*Panel),
		ifaces: make(map[*Interface]*Interface),
	}
}

func (c *cloner) vertex(v *geom.Vertex) *geom.Vertex {
	if out, ok := c.verts[v]; ok {
		return out
	}
	out := v.Clone()
	c.verts[v] = out
	return out
}

func (c *cloner) edge(e *edge.Edge) *edge.Edge {
	if out, ok := c.edges[e]; ok {
		return out
	}
	out := *e
	out.Start, out.End = c.vertex(e.Start), c.vertex(e.End)
	c.edges[e] = &out
	return &out
}

// shell copies the panel geometry. Interfaces are bound once every panel of
// the subtree has a shell, see finish.
func (c *cloner) shell(p *Panel) *Panel {
	if out, ok := c.panels[p]; ok {
		return out
	}
	out := NewPanel(p.name+c.suffix, make(edge.EdgeSequence, len(p.Edges)))
	for i, e := range p.Edges {
		out.Edges[i] = c.edge(e)
	}
	out.Placement = p.Placement
	c.panels[p] = out
	return out
}

func (c *cloner) finish(p *Panel) *Panel {
	out := c.shell(p)
	for _, v := range p.views {
		c.iface(v)
	}
	for name, i := range p.Interfaces {
		out.Interfaces[name] = c.iface(i)
	}
	out.Stitches = c.stitches(p.Stitches)
	return out
}

func (c *cloner) iface(i *Interface) *Interface {
	if i == nil {
		return nil
	}
	if out, ok := c.ifaces[i]; ok {
		return out
	}
	out := &Interface{parts: make([]Part, len(i.parts))}
	for k, part := range i.parts {
		if np, ok := c.panels[part.Panel]; ok {
			part.Panel = np
			part.Edge = c.edge(part.Edge)
		}
		out.parts[k] = part
	}
	c.ifaces[i] = out
	out.register()
	return out
}

func (c *cloner) stitches(s Stitches) Stitches {
	if s == nil {
		return nil
	}
	out := make(Stitches, len(s))
	for k, st := range s {
		out[k] = Stitch{A: c.iface(st.A), B: c.iface(st.B)}
	}
	return out
}

func (c *cloner) component(co *Component) *Component {
	out := NewComponent(co.name + c.suffix)
	out.Placement = co.Placement
	for _, ch := range co.children {
		switch ch := ch.(type) {
		case *Panel:
			out.children = append(out.children, c.finish(ch))
		case *Component:
			out.children = append(out.children, c.component(ch))
		}
	}
	for name, i := range co.Interfaces {
		out.Interfaces[name] = c.iface(i)
	}
	out.Stitches = c.stitches(co.Stitches)
	return out
}
