package pattern

import (
	"slices"

	"github.com/chazu/stitchwork/pkg/edge"
)

// Part is one edge seen through an Interface.
type Part struct {
	Panel *Panel
	Edge  *edge.Edge
	// Reversed means the interface traverses the edge from End to Start.
	Reversed bool
	// Ruffle is the declared stretch rate: at assembly the edge covers
	// Length*Ruffle of its partner. 1 means none.
	Ruffle float64
}

// Interface is an ordered view of boundary edges, possibly spanning several
// panels, that can be stitched to another interface.
//
// An interface does not own geometry. Reversing it or merging it with
// others never moves a vertex. When the panel boundary under a view is
// rewritten by an operator, the view is repaired in place.
type Interface struct {
	parts []Part
}

// NewInterface views the given boundary edges of p with no gathering.
func NewInterface(p *Panel, edges ...*edge.Edge) *Interface {
	i := &Interface{}
	for _, e := range edges {
		i.parts = append(i.parts, Part{Panel: p, Edge: e, Ruffle: 1})
	}
	i.register()
	return i
}

// FromMultiple concatenates interfaces in order into a new one.
func FromMultiple(ifaces ...*Interface) *Interface {
	out := &Interface{}
	for _, in := range ifaces {
		out.parts = append(out.parts, in.parts...)
	}
	out.register()
	return out
}

// register records the interface with every panel it views.
func (i *Interface) register() {
	for _, p := range i.Panels() {
		if !slices.Contains(p.views, i) {
			p.views = append(p.views, i)
		}
	}
}

// SetRuffle sets the stretch rate of every part and returns i.
func (i *Interface) SetRuffle(rate float64) *Interface {
	for k := range i.parts {
		i.parts[k].Ruffle = rate
	}
	return i
}

// Reverse returns a new interface traversing the same edges backwards.
func (i *Interface) Reverse() *Interface {
	out := &Interface{parts: make([]Part, len(i.parts))}
	for k, p := range i.parts {
		p.Reversed = !p.Reversed
		out.parts[len(i.parts)-1-k] = p
	}
	out.register()
	return out
}

// Parts returns a copy of the interface contents.
func (i *Interface) Parts() []Part {
	return slices.Clone(i.parts)
}

// Len is the number of edges viewed.
func (i *Interface) Len() int {
	return len(i.parts)
}

// Edges returns the viewed edges in traversal order.
func (i *Interface) Edges() edge.EdgeSequence {
	out := make(edge.EdgeSequence, len(i.parts))
	for k, p := range i.parts {
		out[k] = p.Edge
	}
	return out
}

// Panels returns the distinct panels viewed, in order of first appearance.
func (i *Interface) Panels() []*Panel {
	var out []*Panel
	for _, p := range i.parts {
		if !slices.Contains(out, p.Panel) {
			out = append(out, p.Panel)
		}
	}
	return out
}

// Length is the total arc length of the viewed edges.
func (i *Interface) Length() float64 {
	total := 0.0
	for _, p := range i.parts {
		total += p.Edge.Length()
	}
	return total
}

// ProjectedLength is the ruffle-adjusted length that must match the
// stitched partner: the sum of each edge length times its rate.
func (i *Interface) ProjectedLength() float64 {
	total := 0.0
	for _, p := range i.parts {
		total += p.Edge.Length() * p.Ruffle
	}
	return total
}

// replace swaps every run of parts on panel p that views an edge in removed
// for parts viewing the matching slice of with. spans[k] is the half-open
// range of with that stands in for removed[k]; a run covering several
// removed edges views everything from the first of their ranges to the last.
// With nil spans every removed edge maps to the whole of with. The ruffle
// rate and direction of the first removed part carry over. It reports
// whether anything changed.
func (i *Interface) replace(p *Panel, removed []*edge.Edge, with edge.EdgeSequence, spans [][2]int) bool {
	changed := false
	var out []Part
	for k := 0; k < len(i.parts); k++ {
		part := i.parts[k]
		if part.Panel != p || !slices.Contains(removed, part.Edge) {
			out = append(out, part)
			continue
		}
		changed = true
		lo, hi := len(with), 0
		cover := func(e *edge.Edge) {
			if spans == nil {
				lo, hi = 0, len(with)
				return
			}
			sp := spans[slices.Index(removed, e)]
			lo, hi = min(lo, sp[0]), max(hi, sp[1])
		}
		cover(part.Edge)
		// swallow the rest of a contiguous run over removed edges
		for k+1 < len(i.parts) && i.parts[k+1].Panel == p && slices.Contains(removed, i.parts[k+1].Edge) {
			k++
			cover(i.parts[k].Edge)
		}
		run := make([]Part, 0, hi-lo)
		for _, e := range with[lo:hi] {
			run = append(run, Part{Panel: p, Edge: e, Reversed: part.Reversed, Ruffle: part.Ruffle})
		}
		if part.Reversed {
			slices.Reverse(run)
		}
		out = append(out, run...)
	}
	if changed {
		i.parts = out
	}
	return changed
}
