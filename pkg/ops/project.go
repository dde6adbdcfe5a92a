package ops

import (
	"fmt"

	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// Project inserts a copy of shape onto boundary edge eid of p. The copy is
// shifted so it starts at the edge start, and a connector edge closes the
// gap from its end to the edge end. It returns the new run.
func Project(shape edge.EdgeSequence, p *pattern.Panel, eid int) (edge.EdgeSequence, error) {
	if eid < 0 || eid >= len(p.Edges) {
		return nil, &edge.ShapeError{Op: "project", Message: fmt.Sprintf("edge %d out of range for panel %q", eid, p.Name())}
	}
	if len(shape) == 0 || !shape.IsChained() {
		return nil, &edge.ShapeError{Op: "project", Message: "shape is not a chained sequence"}
	}
	base := p.Edges[eid]

	run := shape.Clone()
	run.Shift(base.Start.Point().Sub(run.Start().Point()))
	run = append(run, edge.New(run.End(), base.End))

	if err := p.ReplaceEdges(eid, 1, run); err != nil {
		return nil, err
	}
	pattern.Logger().Debug("projected shape", "panel", p.Name(), "edge", eid, "edges", len(run))
	return run, nil
}
